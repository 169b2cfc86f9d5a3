package handler

import (
	"context"
	"time"

	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/ds"
	"github.com/UnicloudAfrica/uniclo-sub016/internal/app/wizard"
)

// SessionStore is what the handlers need from redis: wizard session
// persistence, the catalog cache and the JWT blacklist. *redis.Client
// implements it; handler tests use an in-memory fake.
type SessionStore interface {
	SaveSession(ctx context.Context, s *wizard.Session) error
	GetSession(ctx context.Context, userID uint, sessionID string) (*wizard.Session, error)
	DeleteSession(ctx context.Context, userID uint, sessionID string) error

	GetCatalog(ctx context.Context, key string) ([]wizard.Option, error)
	SetCatalog(ctx context.Context, key string, opts []wizard.Option) error
	InvalidateCatalog(ctx context.Context) error

	WriteJWTToBlacklist(ctx context.Context, jwtStr string, jwtTTL time.Duration) error
}

// Datastore is the persistence surface the handlers use.
// *repository.Repository implements it.
type Datastore interface {
	CreateUser(login, passwordHash, email, fullName string, userRole int) (*ds.User, error)
	GetUserByLogin(login string) (*ds.User, error)
	GetUserByID(id uint) (*ds.User, error)
	UserExistsByLogin(login string) (bool, error)

	GetAllTags() ([]ds.Tag, error)
	CreateTag(name string) (*ds.Tag, error)
	DeleteTag(id uint) error
	TagsExist(names []string) (bool, error)

	RecordOrder(creatorID uint, title string, fastTrack bool, intent *wizard.OrderIntent, requests []wizard.PricingRequest) (*ds.ProvisionOrder, error)
	GetOrderByReference(reference string) (*ds.ProvisionOrder, error)
	GetOrdersByCreator(creatorID uint) ([]ds.ProvisionOrder, error)
	MarkOrderPaid(reference string) error
	MarkOrderAwaitingTransfer(reference string) error
	MarkOrderFailed(reference string) error
	AttachProof(reference, objectName string) error
}

// ProofStorage stores bank-transfer receipts. *storage.MinIOClient
// implements it.
type ProofStorage interface {
	UploadReceipt(fileData []byte, orderReference, originalFilename string) (string, error)
	GetFileURL(objectName string) (string, error)
	DownloadFile(objectName string) ([]byte, error)
	DeleteFile(objectName string) error
}
