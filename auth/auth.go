package auth

import (
	"context"
	"time"

	"folio/database"

	"github.com/juju/errors"
	"github.com/juju/loggo"
	"gorm.io/gorm"
)

var logger = loggo.GetLogger("folio.auth")

// Session is what a successful login hands back to the HTTP layer. Token is
// the plaintext value for the cookie.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// SessionInfo describes a validated session.
type SessionInfo struct {
	Token    string
	UserID   uint
	Username string
}

// Service owns admin credentials and sessions.
type Service struct {
	db  *gorm.DB
	ttl time.Duration
	now func() time.Time
}

func NewService(db *gorm.DB, ttl time.Duration) *Service {
	return &Service{
		db:  db,
		ttl: ttl,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// VerifyCredentials returns the matching admin, or nil when the username is
// unknown or the password is wrong. Both failures cost one bcrypt compare.
func (s *Service) VerifyCredentials(ctx context.Context, username, password string) (*database.AdminUser, error) {
	var users []database.AdminUser
	result := s.db.WithContext(ctx).Where("username = ?", username).Limit(1).Find(&users)
	if result.Error != nil {
		return nil, errors.Annotate(result.Error, "looking up admin user")
	}

	if len(users) == 0 {
		passwordMatches(string(dummyHash), password)
		return nil, nil
	}

	user := users[0]
	if !passwordMatches(user.PasswordHash, password) {
		return nil, nil
	}
	return &user, nil
}

// CreateSession issues a new session for userID, valid for the service TTL.
func (s *Service) CreateSession(ctx context.Context, userID uint) (*Session, error) {
	token, err := generateSessionToken()
	if err != nil {
		return nil, errors.Trace(err)
	}

	now := s.now()
	row := database.AdminSession{
		TokenHash: hashSessionToken(token),
		UserID:    userID,
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, errors.NotFoundf("admin user %d", userID)
		}
		return nil, errors.Annotate(err, "storing session")
	}

	logger.Infof("session created for user %d", userID)
	return &Session{Token: token, ExpiresAt: row.ExpiresAt}, nil
}

// ValidateSession resolves a session token to its owner. Unknown, revoked
// and expired tokens all yield nil; an expired session is deleted on the way.
func (s *Service) ValidateSession(ctx context.Context, token string) (*SessionInfo, error) {
	if token == "" {
		return nil, nil
	}

	var rows []struct {
		UserID    uint
		ExpiresAt time.Time
		Username  string
	}
	result := s.db.WithContext(ctx).
		Table("admin_sessions").
		Select("admin_sessions.user_id, admin_sessions.expires_at, admin_users.username").
		Joins("INNER JOIN admin_users ON admin_users.id = admin_sessions.user_id").
		Where("admin_sessions.token_hash = ?", hashSessionToken(token)).
		Limit(1).
		Scan(&rows)
	if result.Error != nil {
		return nil, errors.Annotate(result.Error, "looking up session")
	}
	if len(rows) == 0 {
		return nil, nil
	}

	row := rows[0]
	if !row.ExpiresAt.After(s.now()) {
		if err := s.DeleteSession(ctx, token); err != nil {
			return nil, errors.Trace(err)
		}
		return nil, nil
	}

	return &SessionInfo{
		Token:    token,
		UserID:   row.UserID,
		Username: row.Username,
	}, nil
}

// DeleteSession removes the session if it exists.
func (s *Service) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.db.WithContext(ctx).
		Where("token_hash = ?", hashSessionToken(token)).
		Delete(&database.AdminSession{}).Error
	if err != nil {
		return errors.Annotate(err, "deleting session")
	}
	return nil
}

// CleanupExpiredSessions deletes every session past its expiry and returns
// how many were removed.
func (s *Service) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("expires_at <= ?", s.now()).
		Delete(&database.AdminSession{})
	if result.Error != nil {
		return 0, errors.Annotate(result.Error, "purging expired sessions")
	}
	if result.RowsAffected > 0 {
		logger.Infof("purged %d expired sessions", result.RowsAffected)
	}
	return result.RowsAffected, nil
}

// CreateAdminUser provisions an admin account. Password strength is the
// operator's business.
func (s *Service) CreateAdminUser(ctx context.Context, username, password string) (*database.AdminUser, error) {
	if username == "" {
		return nil, errors.NotValidf("empty username")
	}
	if password == "" {
		return nil, errors.NotValidf("empty password")
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, errors.Trace(err)
	}

	user := database.AdminUser{
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.AlreadyExistsf("admin user %q", username)
		}
		return nil, errors.Annotate(err, "creating admin user")
	}

	logger.Infof("admin user %q created", username)
	return &user, nil
}

// EnsureAdminUser creates the admin when no account with that username
// exists yet. It reports whether an account was created.
func (s *Service) EnsureAdminUser(ctx context.Context, username, password string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&database.AdminUser{}).Where("username = ?", username).Count(&count).Error
	if err != nil {
		return false, errors.Annotate(err, "counting admin users")
	}
	if count > 0 {
		return false, nil
	}
	if _, err := s.CreateAdminUser(ctx, username, password); err != nil {
		return false, errors.Trace(err)
	}
	return true, nil
}
