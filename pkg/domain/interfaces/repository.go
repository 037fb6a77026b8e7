package interfaces

import "context"

// Repository defines the interface for application data persistence
type Repository interface {
	User() UserRepository
	Close() error
}

// TriggerProvisioner is implemented by stores able to keep the users table in step with
// the identity directory on their own, through a database trigger.
type TriggerProvisioner interface {
	// ProvisionAutoSyncTrigger installs the trigger and backfills rows missing at the time
	// of the call. It is safe to run repeatedly.
	ProvisionAutoSyncTrigger(ctx context.Context) error
}
