package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type recordingListener struct {
	users []string
}

func (l *recordingListener) CatalogChanged(userID string) {
	l.users = append(l.users, userID)
}

type fakeDelivery struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (d *fakeDelivery) Ack(multiple bool) error {
	d.acked = true
	return nil
}

func (d *fakeDelivery) Nack(multiple, requeue bool) error {
	d.nacked = true
	d.requeue = requeue
	return nil
}

func TestHandleRelaysToListener(t *testing.T) {
	l := &recordingListener{}
	w := NewCatalogWorkflow(l, zap.NewNop())

	d := &fakeDelivery{}
	assert.NoError(t, w.handle([]byte(`{"user_id":"u1"}`), d))
	assert.True(t, d.acked)
	assert.Equal(t, []string{"u1"}, l.users)
}

func TestHandleDropsBadMessages(t *testing.T) {
	l := &recordingListener{}
	w := NewCatalogWorkflow(l, zap.NewNop())

	d := &fakeDelivery{}
	assert.Error(t, w.handle([]byte(`not json`), d))
	assert.True(t, d.nacked)
	assert.False(t, d.requeue)

	d = &fakeDelivery{}
	assert.NoError(t, w.handle([]byte(`{}`), d))
	assert.True(t, d.nacked)
	assert.Empty(t, l.users)
}
