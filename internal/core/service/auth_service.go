package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/Sirpyerre/file-manager/internal/core/domain"
	"github.com/Sirpyerre/file-manager/internal/core/ports"
)

const faceContentType = "image/jpeg"

// AuthService implements signup, two-factor login and password management.
type AuthService struct {
	users    ports.UserRepository
	blobs    ports.BlobStore
	liveness ports.LivenessVerifier
	tokens   ports.TokenService
	log      zerolog.Logger
	cost     int
}

func NewAuthService(
	users ports.UserRepository,
	blobs ports.BlobStore,
	liveness ports.LivenessVerifier,
	tokens ports.TokenService,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		blobs:    blobs,
		liveness: liveness,
		tokens:   tokens,
		log:      log,
		cost:     bcrypt.DefaultCost,
	}
}

// WithBcryptCost overrides the hashing cost. Tests use bcrypt.MinCost.
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.cost = cost
	return s
}

func validateCredential(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.Invalid("%s cannot be empty or just spaces", field)
	}
	if len(value) < domain.MinCredentialLength {
		return domain.Invalid("%s should have at least %d characters", field, domain.MinCredentialLength)
	}
	return nil
}

func (s *AuthService) SignUp(ctx context.Context, in ports.SignUpInput) (*domain.User, error) {
	if err := validateCredential("username", in.Username); err != nil {
		return nil, err
	}
	if err := validateCredential("password", in.Password); err != nil {
		return nil, err
	}
	if !domain.ValidRole(in.Role) {
		return nil, domain.Invalid("role must be one of: %s, %s", domain.RoleUser, domain.RoleAdmin)
	}
	if len(in.FaceSample) == 0 {
		return nil, domain.Invalid("a face sample is required")
	}

	if _, err := s.users.FindByUsername(ctx, in.Username); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("signup: %w", err)
	}

	if in.Role == domain.RoleAdmin {
		exists, err := s.users.AdminExists(ctx)
		if err != nil {
			return nil, fmt.Errorf("signup: %w", err)
		}
		if exists {
			return nil, domain.ErrAdminExists
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, err
	}

	faceID, err := s.blobs.Put(ctx, bytes.NewReader(in.FaceSample), domain.BlobMeta{
		Filename:    in.Username + "-face.jpg",
		ContentType: faceContentType,
		Owner:       in.Username,
	})
	if err != nil {
		return nil, fmt.Errorf("signup: enroll face: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.users.Create(ctx, &domain.User{
		Username:        in.Username,
		PasswordHash:    string(hash),
		Role:            in.Role,
		FaceReferenceID: faceID,
		CreatedAt:       now,
		UpdatedAt:       now,
	})
	if err != nil {
		if delErr := s.blobs.Delete(ctx, faceID); delErr != nil {
			s.log.Error().Err(delErr).Str("descriptor", faceID).Str("username", in.Username).
				Msg("face reference left behind after failed signup")
		}
		return nil, err
	}

	s.log.Info().Str("username", created.Username).Str("role", created.Role).Msg("user signed up")
	return created, nil
}

// Login checks the password first and the face second; both must pass.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	if in.Username == "" || in.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, in.Username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if len(in.FaceSample) == 0 {
		return nil, domain.ErrNoFaceDetected
	}
	reference, err := s.readFace(ctx, user)
	if err != nil {
		return nil, err
	}

	match, err := s.liveness.Verify(ctx, reference, in.FaceSample)
	if err != nil {
		return nil, err
	}
	if !match.Matched {
		s.log.Warn().Str("username", user.Username).Float64("distance", match.Distance).Msg("face mismatch")
		return nil, domain.ErrFaceMismatch
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, fmt.Errorf("login: issue token: %w", err)
	}

	s.log.Info().Str("username", user.Username).Float64("distance", match.Distance).Msg("user logged in")
	return &ports.LoginResult{Token: token, ExpiresAt: claims.ExpiresAt, User: user}, nil
}

func (s *AuthService) readFace(ctx context.Context, user *domain.User) ([]byte, error) {
	if user.FaceReferenceID == "" {
		return nil, domain.ErrNoFaceDetected
	}
	rc, err := s.blobs.Get(ctx, user.FaceReferenceID)
	if err != nil {
		if errors.Is(err, domain.ErrBlobNotFound) {
			return nil, domain.ErrNoFaceDetected
		}
		return nil, fmt.Errorf("read face reference: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read face reference: %w", err)
	}
	return data, nil
}

func (s *AuthService) UpdatePassword(ctx context.Context, actor domain.Actor, oldPassword, newPassword string) error {
	user, err := s.users.FindByUsername(ctx, actor.Username)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)) != nil {
		return domain.NewError(domain.ErrUnauthenticated, "current password is incorrect")
	}
	if newPassword == oldPassword {
		return domain.Invalid("new password cannot be the same as the current password")
	}
	if err := validateCredential("password", newPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.cost)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePasswordHash(ctx, user.Username, string(hash), time.Now().UTC()); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.tokens.RevokeAllFor(ctx, user.Username); err != nil {
		s.log.Warn().Err(err).Str("username", user.Username).Msg("could not revoke earlier tokens")
	}
	s.log.Info().Str("username", user.Username).Msg("password updated")
	return nil
}

func (s *AuthService) Logout(ctx context.Context, claims *domain.Claims) error {
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

// FaceReference opens the enrolled face image of the actor.
func (s *AuthService) FaceReference(ctx context.Context, actor domain.Actor) (io.ReadCloser, error) {
	user, err := s.users.FindByUsername(ctx, actor.Username)
	if err != nil {
		return nil, err
	}
	if user.FaceReferenceID == "" {
		return nil, domain.NewError(domain.ErrNotFound, "no face reference enrolled")
	}
	rc, err := s.blobs.Get(ctx, user.FaceReferenceID)
	if err != nil {
		if errors.Is(err, domain.ErrBlobNotFound) {
			return nil, domain.ErrContentBroken
		}
		return nil, fmt.Errorf("face reference: %w", err)
	}
	return rc, nil
}
