package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zitadel/zitadel-go/v3/pkg/client"
	"github.com/zitadel/zitadel-go/v3/pkg/client/zitadel/session/v2"
	v2 "github.com/zitadel/zitadel-go/v3/pkg/client/zitadel/user/v2"
	"github.com/zitadel/zitadel-go/v3/pkg/zitadel"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"phone-verify/internal/domain"
	"phone-verify/internal/logging"
)

// errUserNotFound is returned by ZitadelAPI.FindUserByPhone when no user has
// the number as username.
var errUserNotFound = errors.New("user not found")

// ZitadelConfig holds the Zitadel connection settings.
type ZitadelConfig struct {
	Domain  string
	PAT     string
	KeyPath string
	OrgID   string
}

// ZitadelAPI is the part of the Zitadel API the gateway needs.
type ZitadelAPI interface {
	FindUserByPhone(ctx context.Context, phone domain.PhoneNumber) (string, error)
	CreateUserByPhone(ctx context.Context, phone domain.PhoneNumber) (string, error)
	SendPhoneCode(ctx context.Context, userID string, phone domain.PhoneNumber) error
	VerifyPhone(ctx context.Context, userID, code string) error
	CreateSession(ctx context.Context, userID string) (string, error)
}

// ZitadelGateway delegates code delivery and checking to Zitadel. The pending
// handle is the Zitadel user ID plus a per-send nonce, so every send yields a
// distinct handle for the same user.
type ZitadelGateway struct {
	api        ZitadelAPI
	policy     *PhonePolicy
	sessionTTL time.Duration
	logger     *logging.Logger
	nowF       func() time.Time
}

// NewZitadelGateway wires a gateway on top of api.
func NewZitadelGateway(api ZitadelAPI, policy *PhonePolicy, sessionTTL time.Duration, logger *logging.Logger) *ZitadelGateway {
	if sessionTTL <= 0 {
		sessionTTL = time.Hour
	}
	return &ZitadelGateway{
		api:        api,
		policy:     policy,
		sessionTTL: sessionTTL,
		logger:     logger.WithComponent("gateway.zitadel"),
		nowF:       time.Now,
	}
}

// RequestCode makes Zitadel send a phone verification code, creating the
// user first when the number is unknown.
func (g *ZitadelGateway) RequestCode(ctx context.Context, phone domain.PhoneNumber, timeout time.Duration) (*domain.SendResult, error) {
	if phone == "" {
		return nil, domain.ErrPhoneRequired
	}
	if err := g.policy.Check(phone); err != nil {
		return nil, err
	}

	userID, err := g.api.FindUserByPhone(ctx, phone)
	switch {
	case errors.Is(err, errUserNotFound):
		userID, err = g.api.CreateUserByPhone(ctx, phone)
		if err != nil {
			return nil, fmt.Errorf("create user: %w", mapZitadelError(err))
		}
		g.logger.Info("user created, code sent", "phone", phone.Masked(), "user_id", userID)
	case err != nil:
		return nil, fmt.Errorf("find user: %w", mapZitadelError(err))
	default:
		if err := g.api.SendPhoneCode(ctx, userID, phone); err != nil {
			return nil, fmt.Errorf("send phone code: %w", mapZitadelError(err))
		}
		g.logger.Info("code sent", "phone", phone.Masked(), "user_id", userID)
	}

	return &domain.SendResult{
		Status:    domain.SendStatusCodeSent,
		Handle:    newZitadelHandle(userID),
		ExpiresAt: g.nowF().Add(timeout),
	}, nil
}

// VerifyCode verifies the phone of the user behind handle and opens a session.
func (g *ZitadelGateway) VerifyCode(ctx context.Context, handle domain.PendingHandle, code string) (*domain.Credential, error) {
	if handle.Empty() {
		return nil, domain.ErrNoPendingCode
	}
	if code == "" {
		return nil, domain.ErrCodeRequired
	}

	userID, err := parseZitadelHandle(handle)
	if err != nil {
		return nil, err
	}
	if err := g.api.VerifyPhone(ctx, userID, code); err != nil {
		g.logger.Warn("phone verification failed", "user_id", userID, "error", err.Error())
		return nil, fmt.Errorf("verify phone: %w", mapZitadelError(err))
	}

	token, err := g.api.CreateSession(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", mapZitadelError(err))
	}

	g.logger.Info("phone verified", "user_id", userID)
	return &domain.Credential{
		Token:     token,
		UserID:    userID,
		ExpiresAt: g.nowF().Add(g.sessionTTL),
	}, nil
}

const handleSep = ":"

func newZitadelHandle(userID string) domain.PendingHandle {
	return domain.PendingHandle(userID + handleSep + uuid.NewString())
}

func parseZitadelHandle(h domain.PendingHandle) (string, error) {
	userID, nonce, ok := strings.Cut(string(h), handleSep)
	if !ok || userID == "" || nonce == "" {
		return "", domain.ErrHandleNotFound
	}
	return userID, nil
}

// mapZitadelError translates gRPC status codes into domain errors.
func mapZitadelError(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.InvalidArgument, codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", domain.ErrInvalidOTP, st.Message())
	case codes.NotFound:
		return fmt.Errorf("%w: %s", domain.ErrHandleNotFound, st.Message())
	case codes.DeadlineExceeded:
		return fmt.Errorf("%w: %s", domain.ErrOTPExpired, st.Message())
	case codes.ResourceExhausted:
		return fmt.Errorf("%w: %s", domain.ErrQuotaExceeded, st.Message())
	case codes.Unavailable, codes.Canceled:
		return fmt.Errorf("%w: %s", domain.ErrNetwork, st.Message())
	}
	return err
}

// zitadelClient implements ZitadelAPI with the Zitadel Go SDK.
type zitadelClient struct {
	client *client.Client
	orgID  string
	logger *logging.Logger
}

// NewZitadelClient connects to Zitadel with a Personal Access Token or a
// key file. Localhost domains use an insecure connection on port 8080.
func NewZitadelClient(ctx context.Context, cfg ZitadelConfig, logger *logging.Logger) (ZitadelAPI, error) {
	if cfg.Domain == "" {
		return nil, fmt.Errorf("zitadel domain is not set")
	}
	if cfg.PAT == "" && cfg.KeyPath == "" {
		return nil, fmt.Errorf("either a personal access token or a key path must be set")
	}
	logger = logger.WithComponent("zitadel")

	var instance *zitadel.Zitadel
	if cfg.Domain == "homelab.localhost" || cfg.Domain == "localhost" {
		instance = zitadel.New(cfg.Domain, zitadel.WithInsecure("8080"))
		logger.Warn("using insecure connection", "domain", cfg.Domain)
	} else {
		instance = zitadel.New(cfg.Domain)
	}

	var authOption client.Option
	if cfg.PAT != "" {
		authOption = client.WithAuth(client.PAT(cfg.PAT))
	} else {
		authOption = client.WithAuth(client.DefaultServiceUserAuthentication(
			cfg.KeyPath,
			client.ScopeZitadelAPI(),
		))
	}

	c, err := client.New(ctx, instance, authOption)
	if err != nil {
		return nil, fmt.Errorf("failed to create zitadel client: %w", err)
	}

	logger.Info("zitadel client initialized", "domain", cfg.Domain)
	return &zitadelClient{client: c, orgID: cfg.OrgID, logger: logger}, nil
}

// FindUserByPhone looks the user up by username, which is the E.164 number.
func (z *zitadelClient) FindUserByPhone(ctx context.Context, phone domain.PhoneNumber) (string, error) {
	resp, err := z.client.UserServiceV2().ListUsers(ctx, &v2.ListUsersRequest{
		Queries: []*v2.SearchQuery{
			{
				Query: &v2.SearchQuery_UserNameQuery{
					UserNameQuery: &v2.UserNameQuery{
						UserName: phone.String(),
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.GetResult()) == 0 {
		return "", errUserNotFound
	}
	return resp.GetResult()[0].GetUserId(), nil
}

// CreateUserByPhone creates a human user whose phone receives a code from
// Zitadel. Zitadel requires an email, so a verified placeholder is derived
// from the number.
func (z *zitadelClient) CreateUserByPhone(ctx context.Context, phone domain.PhoneNumber) (string, error) {
	if z.orgID == "" {
		return "", fmt.Errorf("zitadel organization ID is required to create users")
	}

	username := phone.String()
	email := fmt.Sprintf("%s@phone.local", phone.Digits())

	resp, err := z.client.UserServiceV2().CreateUser(ctx, &v2.CreateUserRequest{
		OrganizationId: z.orgID,
		Username:       &username,
		UserType: &v2.CreateUserRequest_Human_{
			Human: &v2.CreateUserRequest_Human{
				Profile: &v2.SetHumanProfile{
					GivenName:  username,
					FamilyName: username,
				},
				Email: &v2.SetHumanEmail{
					Email: email,
					Verification: &v2.SetHumanEmail_IsVerified{
						IsVerified: true,
					},
				},
				Phone: &v2.SetHumanPhone{
					Phone: username,
					Verification: &v2.SetHumanPhone_SendCode{
						SendCode: &v2.SendPhoneVerificationCode{},
					},
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	return resp.GetId(), nil
}

// SendPhoneCode resets the user's phone to phone, which makes Zitadel send a
// fresh code even if the number was verified before.
func (z *zitadelClient) SendPhoneCode(ctx context.Context, userID string, phone domain.PhoneNumber) error {
	_, err := z.client.UserServiceV2().SetPhone(ctx, &v2.SetPhoneRequest{
		UserId: userID,
		Phone:  phone.String(),
		Verification: &v2.SetPhoneRequest_SendCode{
			SendCode: &v2.SendPhoneVerificationCode{},
		},
	})
	return err
}

// VerifyPhone checks the code Zitadel sent.
func (z *zitadelClient) VerifyPhone(ctx context.Context, userID, code string) error {
	_, err := z.client.UserServiceV2().VerifyPhone(ctx, &v2.VerifyPhoneRequest{
		UserId:           userID,
		VerificationCode: code,
	})
	return err
}

// CreateSession opens a session for the user and returns its token.
func (z *zitadelClient) CreateSession(ctx context.Context, userID string) (string, error) {
	resp, err := z.client.SessionServiceV2().CreateSession(ctx, &session.CreateSessionRequest{
		Checks: &session.Checks{
			User: &session.CheckUser{
				Search: &session.CheckUser_UserId{
					UserId: userID,
				},
			},
		},
	})
	if err != nil {
		return "", err
	}
	return resp.GetSessionToken(), nil
}
