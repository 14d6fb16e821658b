package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"fjacquet/statement-organizer/internal/fileutils"
	"fjacquet/statement-organizer/internal/logging"
	"fjacquet/statement-organizer/internal/models"
	"fjacquet/statement-organizer/internal/validation"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

// AuthConfig locates the OAuth client secret and the cached user token.
type AuthConfig struct {
	CredentialsFile string
	TokenFile       string
	// CallbackAddr is where the one-shot redirect listener binds during the
	// interactive flow.
	CallbackAddr string
	Timeout      time.Duration
}

// NewHTTPClient returns an HTTP client authorized for Drive. A cached token is
// reused and refreshed when expired; otherwise the browser flow runs once and
// the token is saved for later runs.
func NewHTTPClient(ctx context.Context, cfg AuthConfig, logger logging.Logger) (*http.Client, error) {
	if logger == nil {
		logger = logging.Nop()
	}
	secret, err := os.ReadFile(fileutils.ExpandHome(cfg.CredentialsFile)) // #nosec G304 -- path from configuration
	if err != nil {
		return nil, fmt.Errorf("reading client secret file: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(secret, drive.DriveScope)
	if err != nil {
		return nil, fmt.Errorf("parsing client secret: %w", err)
	}

	tokenFile := fileutils.ExpandHome(cfg.TokenFile)
	for _, secretFile := range []string{fileutils.ExpandHome(cfg.CredentialsFile), tokenFile} {
		if err := validation.CheckSecretFile(secretFile); err != nil {
			logger.WithError(err).Warn("OAuth secret file is readable by other users")
		}
	}
	token, err := TokenFromFile(tokenFile)
	if err != nil {
		logger.WithField(logging.FieldPath, tokenFile).Info("No cached token, starting browser authorization")
		token, err = authorizeInteractive(ctx, oauthConfig, cfg, logger)
		if err != nil {
			return nil, err
		}
		if err := SaveToken(tokenFile, token); err != nil {
			logger.WithError(err).Warn("Failed to save token")
		}
	} else if !token.Valid() {
		refreshed, err := oauthConfig.TokenSource(ctx, token).Token()
		if err != nil {
			return nil, fmt.Errorf("failed to refresh token: %w", err)
		}
		token = refreshed
		if err := SaveToken(tokenFile, token); err != nil {
			logger.WithError(err).Warn("Failed to save refreshed token")
		}
	}

	return oauthConfig.Client(ctx, token), nil
}

// TokenFromFile retrieves a token from a local file.
func TokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("decoding token: %w", err)
	}
	return tok, nil
}

// SaveToken writes token to path with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	return fileutils.WriteFileAtomic(path, data, models.PermissionStateFile)
}

func authorizeInteractive(ctx context.Context, oauthConfig *oauth2.Config, cfg AuthConfig, logger logging.Logger) (*oauth2.Token, error) {
	addr := cfg.CallbackAddr
	if addr == "" {
		addr = "localhost:8085"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}
	oauthConfig.RedirectURL = "http://" + listener.Addr().String() + "/callback"

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			select {
			case errCh <- errors.New("no authorization code received"):
			default:
			}
			_, _ = fmt.Fprint(w, "Authorization failed. You can close this window.")
			return
		}
		select {
		case codeCh <- code:
		default:
		}
		_, _ = fmt.Fprint(w, "Authorization complete. You can close this window.")
	})
	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("callback server: %w", err)
		}
	}()
	defer func() { _ = server.Shutdown(context.Background()) }()

	authURL := oauthConfig.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	logger.WithField("url", authURL).Info("Open this URL in a browser to authorize Drive access")

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(timeout):
		return nil, fmt.Errorf("authorization timed out after %s", timeout)
	}

	token, err := oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}
