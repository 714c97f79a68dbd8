package usecase

import "context"

// FirebaseAuthClient is the authentication provider boundary. The usecases
// only ever read identity and display metadata; credentials stay inside the
// provider.
type FirebaseAuthClient interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	VerifyToken(ctx context.Context, token string) (string, error)
	SignInWithEmailPassword(email, password string) (idToken, refreshToken string, err error)
	RefreshIdToken(refreshToken string) (idToken, newRefreshToken string, err error)
	UpdateUserProfile(ctx context.Context, uid, displayName, photoURL string) error
	SendPasswordResetEmail(email string) error
}
