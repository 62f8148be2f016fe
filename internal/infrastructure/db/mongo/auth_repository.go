package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/talentloop/portal/internal/core/domain"
	"github.com/talentloop/portal/internal/core/ports"
)

const accountCollection = "accounts"

// AccountRepository stores the development backend's accounts.
type AccountRepository struct {
	coll *mongo.Collection
}

func NewAccountRepository(db *mongo.Database) *AccountRepository {
	return &AccountRepository{coll: db.Collection(accountCollection)}
}

type mongoAccount struct {
	ID              primitive.ObjectID `bson:"_id,omitempty"`
	Name            string             `bson:"name"`
	Email           string             `bson:"email"`
	PasswordHash    string             `bson:"password_hash"`
	Roles           []string           `bson:"roles"`
	OnboardingStage string             `bson:"onboarding_stage,omitempty"`
}

func (r *AccountRepository) Create(ctx context.Context, account *ports.Account) (*ports.Account, error) {
	if _, err := r.FindByEmail(ctx, account.Email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, err
	}

	doc := mongoAccount{
		Name:            account.Name,
		Email:           account.Email,
		PasswordHash:    account.PasswordHash,
		Roles:           account.Roles.Names(),
		OnboardingStage: account.OnboardingStage,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert account: %w", err)
	}

	oid, ok := res.InsertedID.(primitive.ObjectID)
	if !ok {
		return nil, fmt.Errorf("insert account: unexpected id type %T", res.InsertedID)
	}
	doc.ID = oid
	return toAccount(doc), nil
}

func (r *AccountRepository) FindByEmail(ctx context.Context, email string) (*ports.Account, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *AccountRepository) FindByID(ctx context.Context, id string) (*ports.Account, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *AccountRepository) Update(ctx context.Context, account *ports.Account) error {
	oid, err := primitive.ObjectIDFromHex(account.ID)
	if err != nil {
		return domain.ErrUserNotFound
	}
	update := bson.M{"$set": bson.M{
		"name":             account.Name,
		"password_hash":    account.PasswordHash,
		"roles":            account.Roles.Names(),
		"onboarding_stage": account.OnboardingStage,
	}}
	res, err := r.coll.UpdateByID(ctx, oid, update)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *AccountRepository) findOne(ctx context.Context, filter bson.M) (*ports.Account, error) {
	var doc mongoAccount
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find account: %w", err)
	}
	return toAccount(doc), nil
}

func toAccount(doc mongoAccount) *ports.Account {
	return &ports.Account{
		User: domain.User{
			ID:              doc.ID.Hex(),
			Name:            doc.Name,
			Email:           doc.Email,
			Roles:           domain.NewRoleSet(doc.Roles...),
			OnboardingStage: doc.OnboardingStage,
		},
		PasswordHash: doc.PasswordHash,
	}
}
