package userstore

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dalemusser/profilecompletion/internal/app/system/normalize"
	"github.com/dalemusser/profilecompletion/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateLoginID is returned when a login id is already taken for the same auth method.
	ErrDuplicateLoginID = errors.New("a user with this login id already exists")
	// ErrUnknownCoreField is returned by UpdateCoreFields for a name outside the built-in set.
	ErrUnknownCoreField = errors.New("unknown core profile field")

	errBadRole       = errors.New(`role must be "admin"|"member"|"guest"`)
	errBadStatus     = errors.New(`status must be "active"|"disabled"`)
	errBadAuthMethod = errors.New(`auth_method must be "password"|"google"`)
	errLoginNeeded   = errors.New("login_id is required")
)

// GetByID loads a user by ObjectID. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByIDs loads the users with the given ids. Missing ids are skipped.
func (s *Store) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByLoginID looks up a user by case-folded login id and auth method.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByLoginID(ctx context.Context, loginID, authMethod string) (*models.User, error) {
	var u models.User
	filter := bson.M{
		"login_id_ci": text.Fold(loginID),
		"auth_method": normalize.AuthMethod(authMethod),
	}
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByAuthReturnID looks up a user by the subject id an identity provider
// returned on an earlier sign-in. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByAuthReturnID(ctx context.Context, authMethod, returnID string) (*models.User, error) {
	var u models.User
	filter := bson.M{
		"auth_return_id": returnID,
		"auth_method":    normalize.AuthMethod(authMethod),
	}
	if err := s.c.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
// PasswordHash, when needed, must already be hashed.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if u.LoginID == nil || text.Fold(*u.LoginID) == "" {
		return models.User{}, errLoginNeeded
	}
	u.ID = primitive.NewObjectID()
	ci := text.Fold(*u.LoginID)
	u.LoginIDCI = &ci
	u.Role = normalize.Role(u.Role)
	u.Status = normalize.Status(u.Status)
	if u.Status == "" {
		u.Status = models.StatusActive
	}
	u.AuthMethod = normalize.AuthMethod(u.AuthMethod)
	if u.AuthMethod == "" {
		u.AuthMethod = "password"
	}
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.City = normalize.Name(u.City)
	u.Email = normalize.Email(u.Email)
	u.Country = normalize.Country(u.Country)
	u.Phone1 = normalize.Phone(u.Phone1)

	if !models.IsValidRole(u.Role) {
		return models.User{}, errBadRole
	}
	if u.Status != models.StatusActive && u.Status != models.StatusDisabled {
		return models.User{}, errBadStatus
	}
	if !models.IsValidAuthMethod(u.AuthMethod) {
		return models.User{}, errBadAuthMethod
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateLoginID
		}
		return models.User{}, err
	}
	return u, nil
}

// NormalizeCore canonicalizes a built-in profile field value the way it
// will be stored.
func NormalizeCore(name, value string) string {
	switch name {
	case "email":
		return normalize.Email(value)
	case "country":
		return normalize.Country(value)
	case "phone1":
		return normalize.Phone(value)
	}
	return normalize.Name(value)
}

// CheckCoreFields returns ErrUnknownCoreField for the first key that is
// not a built-in profile field. UpdateCoreFields applies the same check.
func CheckCoreFields(values map[string]string) error {
	for name := range values {
		if _, ok := models.CoreBSONField(name); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownCoreField, name)
		}
	}
	return nil
}

// UpdateCoreFields writes the given built-in profile fields for one user.
// Keys are core field names (firstname, lastname, email, city, country,
// phone1). Values are normalized before they are stored. An empty map is a
// no-op. Returns mongo.ErrNoDocuments if the user does not exist.
func (s *Store) UpdateCoreFields(ctx context.Context, id primitive.ObjectID, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	if err := CheckCoreFields(values); err != nil {
		return err
	}
	set := bson.M{"updated_at": time.Now()}
	for name, v := range values {
		field, _ := models.CoreBSONField(name)
		set[field] = NormalizeCore(name, v)
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetAuthReturnID records the identity provider subject id for a user so
// later sign-ins can match on it.
func (s *Store) SetAuthReturnID(ctx context.Context, id primitive.ObjectID, returnID string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"auth_return_id": returnID,
		"updated_at":     time.Now(),
	}})
	return err
}

// EnsureAdmin makes sure an active admin account exists for loginID and
// authMethod. A missing account is created with the given password hash
// (empty for non-password methods); an existing one is promoted and
// re-enabled. The returned bool reports whether a new account was created.
func (s *Store) EnsureAdmin(ctx context.Context, loginID, authMethod, passwordHash string) (bool, error) {
	ci := text.Fold(loginID)
	if ci == "" {
		return false, errLoginNeeded
	}
	method := normalize.AuthMethod(authMethod)
	if !models.IsValidAuthMethod(method) {
		return false, errBadAuthMethod
	}

	now := time.Now()
	login := normalize.Email(loginID)
	set := bson.M{
		"role":       models.RoleAdmin,
		"status":     models.StatusActive,
		"updated_at": now,
	}
	if passwordHash != "" {
		set["password_hash"] = passwordHash
	}
	onInsert := bson.M{
		"_id":        primitive.NewObjectID(),
		"login_id":   login,
		"email":      login,
		"created_at": now,
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"login_id_ci": ci, "auth_method": method},
		bson.M{"$set": set, "$setOnInsert": onInsert},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}
