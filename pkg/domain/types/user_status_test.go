package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/gasyway/gasyway/pkg/domain/types"
)

func TestUserStatus_IsValid(t *testing.T) {
	tests := []struct {
		name   string
		status types.UserStatus
		want   bool
	}{
		{name: "active", status: types.UserStatusActive, want: true},
		{name: "blocked", status: types.UserStatusBlocked, want: true},
		{name: "deleted", status: types.UserStatusDeleted, want: true},
		{name: "unknown", status: types.UserStatus("suspended"), want: false},
		{name: "empty", status: types.UserStatus(""), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.status.IsValid()).Equal(tt.want)
		})
	}
}

func TestParseUserStatus(t *testing.T) {
	status, err := types.ParseUserStatus("blocked")
	gt.NoError(t, err).Required()
	gt.Value(t, status).Equal(types.UserStatusBlocked)

	_, err = types.ParseUserStatus("ACTIVE")
	gt.Value(t, err).NotNil()
}

func TestAllUserStatuses(t *testing.T) {
	statuses := types.AllUserStatuses()
	gt.Array(t, statuses).Length(3)
	for _, s := range statuses {
		gt.B(t, s.IsValid()).True()
	}
}
