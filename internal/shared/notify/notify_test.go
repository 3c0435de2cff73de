package notify_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/faisallbhr/simple-hris/internal/shared/notify"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
)

func TestUserChannel(t *testing.T) {
	assert.Equal(t, "private-user.42", notify.UserChannel("42"))
}

func TestRedisNotifier_Publish(t *testing.T) {
	db, mock := redismock.NewClientMock()
	n := notify.NewRedisNotifier(db)

	payload := map[string]any{"userId": "u-1", "status": "success"}
	data, _ := json.Marshal(payload)
	body, _ := json.Marshal(notify.Message{Event: "import.users", Data: data})

	mock.ExpectPublish("private-user.u-1", body).SetVal(1)

	err := n.Publish(context.Background(), notify.UserChannel("u-1"), "import.users", payload)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisNotifier_PublishError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	n := notify.NewRedisNotifier(db)

	data, _ := json.Marshal("x")
	body, _ := json.Marshal(notify.Message{Event: "import.users", Data: data})
	mock.ExpectPublish("private-user.u-1", body).SetErr(errors.New("redis down"))

	err := n.Publish(context.Background(), "private-user.u-1", "import.users", "x")
	assert.Error(t, err)
}
