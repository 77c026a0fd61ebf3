package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/activity-server/internal/models"
	appErrors "github.com/noah-isme/activity-server/pkg/errors"
)

type instructorReader interface {
	FindByEmail(ctx context.Context, email string) (*models.Instructor, error)
	Linked(ctx context.Context, activityID string, instructorID int64) (bool, error)
}

// AuthService resolves a bearer token to a registered instructor.
//
// SECURITY: DecodeToken only extracts the payload of the Google-issued ID
// token. The signature, expiry, issuer and audience are NOT verified; any
// well-formed three-segment token with a parseable payload is accepted.
// This is kept bug-compatible with the legacy grading clients. Production
// deployments must swap in validation against Google's published keys; see
// DESIGN.md.
type AuthService struct {
	instructors instructorReader
	parser      *jwt.Parser
	logger      *zap.Logger
}

// NewAuthService constructs an AuthService.
func NewAuthService(instructors instructorReader, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		instructors: instructors,
		parser:      jwt.NewParser(jwt.WithPaddingAllowed()),
		logger:      logger,
	}
}

// DecodeToken splits the token into its three segments and base64url-decodes
// the claims payload. It fails with ErrInvalidToken on a wrong segment
// count, malformed base64 or malformed JSON.
func (s *AuthService) DecodeToken(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := s.parser.ParseUnverified(token, claims); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidToken.Code, appErrors.ErrInvalidToken.Status, "invalid token")
	}
	return claims, nil
}

// ResolveInstructor decodes the token, extracts the email claim and looks up
// the matching instructor. It is the sole authorization mechanism for every
// instructor-facing operation.
func (s *AuthService) ResolveInstructor(ctx context.Context, token string) (*models.Instructor, error) {
	claims, err := s.DecodeToken(token)
	if err != nil {
		return nil, err
	}

	email, _ := claims["email"].(string)
	if email == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthenticated, "email not found in token")
	}

	instructor, err := s.instructors.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrForbidden, fmt.Sprintf("email %s is not authorized as an instructor", email))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "instructor lookup failed")
	}

	return instructor, nil
}

// RequireActivityAccess verifies the instructor is linked to the activity.
func (s *AuthService) RequireActivityAccess(ctx context.Context, instructor *models.Instructor, activityID string) error {
	linked, err := s.instructors.Linked(ctx, activityID, instructor.ID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "activity access lookup failed")
	}
	if !linked {
		return appErrors.Clone(appErrors.ErrForbidden, "access denied to this activity")
	}
	return nil
}
