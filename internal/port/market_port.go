package port

import (
	"context"

	"github.com/boddenberg/sparkhub-bfa/internal/domain"
)

// Get* methods return *domain.ErrNotFound for unknown ids. Update* methods
// run fn under the store lock and persist the record only when fn returns nil.

// UserStore handles user accounts of every role.
type UserStore interface {
	CreateUser(ctx context.Context, u *domain.User) error
	GetUser(ctx context.Context, userID string) (*domain.User, error)
	// FindUserByEmail returns (nil, nil) when no user has that email.
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, userID string, fn func(*domain.User) error) (*domain.User, error)
	ListUsers(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// CredentialStore holds password hashes and lockout state.
type CredentialStore interface {
	// GetCredential returns (nil, nil) when the user has no password set.
	GetCredential(ctx context.Context, userID string) (*domain.Credential, error)
	SaveCredential(ctx context.Context, c *domain.Credential) error
	// UpdateCredential applies fn to the stored credential atomically.
	UpdateCredential(ctx context.Context, userID string, fn func(*domain.Credential) error) (*domain.Credential, error)
}

// ElectricianStore keeps applications and approved electricians in two
// disjoint collections.
type ElectricianStore interface {
	AddApplication(ctx context.Context, e *domain.ElectricianProfile) error
	GetElectrician(ctx context.Context, id string) (*domain.ElectricianProfile, error)
	GetApplication(ctx context.Context, id string) (*domain.ElectricianProfile, error)
	// FindApplicationByEmail returns (nil, nil) when there is none.
	FindApplicationByEmail(ctx context.Context, email string) (*domain.ElectricianProfile, error)
	ListElectricians(ctx context.Context) ([]domain.ElectricianProfile, error)
	ListApplications(ctx context.Context) ([]domain.ElectricianProfile, error)
	// ApproveApplication moves the record to the approved collection and
	// registers its user account in one step.
	ApproveApplication(ctx context.Context, id string, fn func(*domain.ElectricianProfile)) (*domain.ElectricianProfile, error)
	RejectApplication(ctx context.Context, id string) (*domain.ElectricianProfile, error)
	UpdateElectrician(ctx context.Context, id string, fn func(*domain.ElectricianProfile) error) (*domain.ElectricianProfile, error)
}

// ServiceStore keeps pending and active catalog entries.
type ServiceStore interface {
	AddService(ctx context.Context, s *domain.Service) error
	GetService(ctx context.Context, id string) (*domain.Service, error)
	ListServices(ctx context.Context, status domain.ServiceStatus) ([]domain.Service, error)
	ApproveService(ctx context.Context, id string) (*domain.Service, error)
	RejectService(ctx context.Context, id string) (*domain.Service, error)
}

// JobStore handles bookings.
type JobStore interface {
	CreateJob(ctx context.Context, j *domain.Job) error
	GetJob(ctx context.Context, id string) (*domain.Job, error)
	ListJobs(ctx context.Context, f domain.JobFilter) ([]domain.Job, error)
	UpdateJob(ctx context.Context, id string, fn func(*domain.Job) error) (*domain.Job, error)
}

// NotificationStore handles per-user notifications.
type NotificationStore interface {
	AddNotification(ctx context.Context, n *domain.Notification) error
	// ListNotifications returns the user's notifications, newest first.
	ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) (*domain.Notification, error)
	MarkAllNotificationsRead(ctx context.Context, userID string) (int, error)
}

// MessageStore handles chat lines.
type MessageStore interface {
	AddMessage(ctx context.Context, m *domain.Message) error
	// ListMessages returns a job conversation, oldest first.
	ListMessages(ctx context.Context, jobID string) ([]domain.Message, error)
	MarkMessagesRead(ctx context.Context, jobID, recipientID string) (int, error)
}

// WalletStore handles customer wallets and job payments.
type WalletStore interface {
	// GetWallet returns an empty wallet for users that never topped up.
	GetWallet(ctx context.Context, userID string) (*domain.Wallet, error)
	UpdateWallet(ctx context.Context, userID string, fn func(*domain.Wallet) error) (*domain.Wallet, error)
	SavePayment(ctx context.Context, p *domain.Payment) error
	// FindPaymentByJob returns (nil, nil) when the job is unpaid.
	FindPaymentByJob(ctx context.Context, jobID string) (*domain.Payment, error)
}

// MarketStore is the whole in-memory source of truth.
type MarketStore interface {
	UserStore
	CredentialStore
	ElectricianStore
	ServiceStore
	JobStore
	NotificationStore
	MessageStore
	WalletStore
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}
