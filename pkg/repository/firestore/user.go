package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/gasyway/gasyway/pkg/domain/interfaces"
	"github.com/gasyway/gasyway/pkg/domain/model"
	"github.com/gasyway/gasyway/pkg/domain/types"
)

// UsersCollection is the collection holding application user documents, keyed by user ID
const UsersCollection = "users"

type userRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.UserRepository = &userRepository{}

func newUserRepository(client *firestore.Client) *userRepository {
	return &userRepository{
		client: client,
	}
}

// userDoc is the Firestore persistence model
type userDoc struct {
	ID                  string    `firestore:"id"`
	Email               string    `firestore:"email"`
	Role                string    `firestore:"role"`
	Status              string    `firestore:"status"`
	FirstName           string    `firestore:"first_name"`
	LastName            string    `firestore:"last_name"`
	Phone               string    `firestore:"phone"`
	GDPRConsent         bool      `firestore:"gdpr_consent"`
	Locale              string    `firestore:"locale"`
	FirstLoginCompleted bool      `firestore:"first_login_completed"`
	CreatedAt           time.Time `firestore:"created_at"`
	UpdatedAt           time.Time `firestore:"updated_at"`
	LastLogin           time.Time `firestore:"last_login"`
}

func (r *userRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + UsersCollection)
	}
	return r.client.Collection(UsersCollection)
}

func toUserDoc(u *model.User) *userDoc {
	return &userDoc{
		ID:                  string(u.ID),
		Email:               u.Email,
		Role:                string(u.Role),
		Status:              string(u.Status),
		FirstName:           u.FirstName,
		LastName:            u.LastName,
		Phone:               u.Phone,
		GDPRConsent:         u.GDPRConsent,
		Locale:              string(u.Locale),
		FirstLoginCompleted: u.FirstLoginCompleted,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
		LastLogin:           u.LastLogin,
	}
}

func fromUserDoc(doc *userDoc) *model.User {
	return &model.User{
		ID:                  model.UserID(doc.ID),
		Email:               doc.Email,
		Role:                types.Role(doc.Role),
		Status:              types.UserStatus(doc.Status),
		FirstName:           doc.FirstName,
		LastName:            doc.LastName,
		Phone:               doc.Phone,
		GDPRConsent:         doc.GDPRConsent,
		Locale:              types.Locale(doc.Locale),
		FirstLoginCompleted: doc.FirstLoginCompleted,
		CreatedAt:           doc.CreatedAt,
		UpdatedAt:           doc.UpdatedAt,
		LastLogin:           doc.LastLogin,
	}
}

func (r *userRepository) List(ctx context.Context) ([]*model.User, error) {
	iter := r.collection().OrderBy("created_at", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var users []*model.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate users")
		}

		var d userDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("doc_id", doc.Ref.ID))
		}
		users = append(users, fromUserDoc(&d))
	}

	return users, nil
}

func (r *userRepository) Get(ctx context.Context, id model.UserID) (*model.User, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(interfaces.ErrNotFound, "user not found", goerr.V("user_id", id))
		}
		return nil, goerr.Wrap(err, "failed to get user", goerr.V("user_id", id))
	}

	var d userDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal user", goerr.V("user_id", id))
	}

	return fromUserDoc(&d), nil
}

// Insert uses Create so that an existing document is never overwritten
func (r *userRepository) Insert(ctx context.Context, user *model.User) error {
	if err := user.Validate(); err != nil {
		return goerr.Wrap(err, "invalid user")
	}

	if _, err := r.collection().Doc(string(user.ID)).Create(ctx, toUserDoc(user)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return goerr.Wrap(interfaces.ErrAlreadyExists, "user already exists", goerr.V("user_id", user.ID))
		}
		return goerr.Wrap(err, "failed to create user", goerr.V("user_id", user.ID))
	}

	return nil
}

func (r *userRepository) Update(ctx context.Context, id model.UserID, patch *model.UserPatch) error {
	updates := []firestore.Update{
		{Path: "updated_at", Value: patch.UpdatedAt},
	}
	if patch.Email != nil {
		updates = append(updates, firestore.Update{Path: "email", Value: *patch.Email})
	}
	if patch.Role != nil {
		if *patch.Role == "" {
			return goerr.New("user role is required", goerr.V("user_id", id))
		}
		updates = append(updates, firestore.Update{Path: "role", Value: string(*patch.Role)})
	}
	if patch.Status != nil {
		if !patch.Status.IsValid() {
			return goerr.New("invalid user status", goerr.V("user_id", id), goerr.V("status", *patch.Status))
		}
		updates = append(updates, firestore.Update{Path: "status", Value: string(*patch.Status)})
	}

	// Update fails with NotFound when the document does not exist
	if _, err := r.collection().Doc(string(id)).Update(ctx, updates); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(interfaces.ErrNotFound, "user not found", goerr.V("user_id", id))
		}
		return goerr.Wrap(err, "failed to update user", goerr.V("user_id", id))
	}

	return nil
}

func (r *userRepository) Delete(ctx context.Context, id model.UserID) error {
	if _, err := r.collection().Doc(string(id)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete user", goerr.V("user_id", id))
	}
	return nil
}
