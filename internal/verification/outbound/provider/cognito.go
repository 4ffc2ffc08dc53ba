package provider

import (
	"context"
	"encoding/base64"
	"errors"
	"sync"
	"time"

	"github.com/agrilink/idgate/internal/pkg/goerror"
	"github.com/agrilink/idgate/internal/pkg/hash"
	"github.com/agrilink/idgate/internal/pkg/instrument"
	"github.com/aws/aws-sdk-go-v2/aws"
	cip "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// DefaultCallTimeout bounds every provider call.
const DefaultCallTimeout = 10 * time.Second

// apiError matches the error shape returned by the AWS SDK so the
// provider's message can be carried verbatim without importing smithy.
type apiError interface {
	error
	ErrorCode() string
	ErrorMessage() string
}

// CognitoConfig configures the Cognito-backed provider.
type CognitoConfig struct {
	Client       *cip.Client
	ClientID     string
	ClientSecret string
	UserPoolID   string
	CallTimeout  time.Duration
}

// Cognito implements Identity against an AWS Cognito user pool. Login OTP
// challenges ride the pool's custom-auth flow; the per-conversation session
// Cognito hands back between InitiateAuth and RespondToAuthChallenge is
// tracked here, keyed by username.
type Cognito struct {
	client     *cip.Client
	clientID   string
	userPoolID string
	secret     hash.Hash
	timeout    time.Duration
	ins        instrument.Instrumentation

	mu     sync.Mutex
	logins map[string]string
}

// NewCognito builds the Cognito-backed provider.
func NewCognito(cfg CognitoConfig, ins instrument.Instrumentation) *Cognito {
	timeout := cfg.CallTimeout
	if timeout <= 0 {
		timeout = DefaultCallTimeout
	}

	var secret hash.Hash
	if cfg.ClientSecret != "" {
		secret = hash.NewHMACSHA256(cfg.ClientSecret)
	}

	return &Cognito{
		client:     cfg.Client,
		clientID:   cfg.ClientID,
		userPoolID: cfg.UserPoolID,
		secret:     secret,
		timeout:    timeout,
		ins:        ins,
		logins:     make(map[string]string),
	}
}

func (c *Cognito) CreatePendingIdentity(ctx context.Context, in PendingIdentity) (_ string, err error) {
	ctx, span := c.startSpan(ctx, "CreatePendingIdentity")
	defer func() { c.endSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.client.SignUp(ctx, &cip.SignUpInput{
		ClientId:   aws.String(c.clientID),
		Username:   aws.String(in.Username),
		Password:   aws.String(in.Password),
		SecretHash: c.secretHash(in.Username),
		UserAttributes: []types.AttributeType{
			{Name: aws.String("phone_number"), Value: aws.String(in.Phone)},
			{Name: aws.String("name"), Value: aws.String(in.DisplayName)},
			{Name: aws.String("custom:account_id"), Value: aws.String(in.AccountID)},
		},
	})
	if err != nil {
		return "", c.mapError(err)
	}

	return aws.ToString(out.UserSub), nil
}

func (c *Cognito) ConfirmIdentity(ctx context.Context, username, code string) (err error) {
	ctx, span := c.startSpan(ctx, "ConfirmIdentity")
	defer func() { c.endSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err = c.client.ConfirmSignUp(ctx, &cip.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(username),
		ConfirmationCode: aws.String(code),
		SecretHash:       c.secretHash(username),
	})
	if err != nil {
		return c.mapError(err)
	}

	return nil
}

func (c *Cognito) ResendCode(ctx context.Context, username string) (err error) {
	ctx, span := c.startSpan(ctx, "ResendCode")
	defer func() { c.endSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	_, err = c.client.ResendConfirmationCode(ctx, &cip.ResendConfirmationCodeInput{
		ClientId:   aws.String(c.clientID),
		Username:   aws.String(username),
		SecretHash: c.secretHash(username),
	})
	if err != nil {
		return c.mapError(err)
	}

	return nil
}

// BeginLoginChallenge starts the pool's CUSTOM_AUTH flow for a confirmed
// user; the challenge Lambda delivers the code. ResendConfirmationCode and
// ConfirmSignUp are only valid for unconfirmed users, so login cannot use
// them.
func (c *Cognito) BeginLoginChallenge(ctx context.Context, username string) (err error) {
	ctx, span := c.startSpan(ctx, "BeginLoginChallenge")
	defer func() { c.endSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := map[string]string{"USERNAME": username}
	if sh := c.secretHash(username); sh != nil {
		params["SECRET_HASH"] = aws.ToString(sh)
	}

	out, err := c.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeCustomAuth,
		ClientId:       aws.String(c.clientID),
		AuthParameters: params,
	})
	if err != nil {
		return c.mapError(err)
	}

	if out.ChallengeName != types.ChallengeNameTypeCustomChallenge {
		return goerror.NewProvider(nil, "Login challenge not supported", goerror.CodeInternal)
	}

	c.mu.Lock()
	c.logins[username] = aws.ToString(out.Session)
	c.mu.Unlock()

	return nil
}

func (c *Cognito) CompleteLoginChallenge(ctx context.Context, username, code string) (err error) {
	ctx, span := c.startSpan(ctx, "CompleteLoginChallenge")
	defer func() { c.endSpan(span, err) }()

	c.mu.Lock()
	providerSession, ok := c.logins[username]
	c.mu.Unlock()

	if !ok {
		return goerror.NewProvider(nil, "No login challenge in progress", goerror.CodeUnauthorized)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	responses := map[string]string{"USERNAME": username, "ANSWER": code}
	if sh := c.secretHash(username); sh != nil {
		responses["SECRET_HASH"] = aws.ToString(sh)
	}

	out, err := c.client.RespondToAuthChallenge(ctx, &cip.RespondToAuthChallengeInput{
		ChallengeName:      types.ChallengeNameTypeCustomChallenge,
		ClientId:           aws.String(c.clientID),
		Session:            aws.String(providerSession),
		ChallengeResponses: responses,
	})
	if err != nil {
		return c.mapError(err)
	}

	// A repeated challenge means the answer was rejected; Cognito issues a
	// fresh session for the retry.
	if out.AuthenticationResult == nil {
		c.mu.Lock()
		c.logins[username] = aws.ToString(out.Session)
		c.mu.Unlock()

		return goerror.NewProvider(nil, "Invalid verification code provided, please try again", goerror.CodeUnauthorized)
	}

	c.mu.Lock()
	delete(c.logins, username)
	c.mu.Unlock()

	return nil
}

func (c *Cognito) GetIdentity(ctx context.Context, username string) (_ *RemoteIdentity, err error) {
	ctx, span := c.startSpan(ctx, "GetIdentity")
	defer func() { c.endSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.client.AdminGetUser(ctx, &cip.AdminGetUserInput{
		UserPoolId: aws.String(c.userPoolID),
		Username:   aws.String(username),
	})
	if err != nil {
		return nil, c.mapError(err)
	}

	identity := &RemoteIdentity{
		Confirmed: out.UserStatus == types.UserStatusTypeConfirmed,
	}
	for _, attr := range out.UserAttributes {
		switch aws.ToString(attr.Name) {
		case "sub":
			identity.ProviderID = aws.ToString(attr.Value)
		case "phone_number":
			identity.Phone = aws.ToString(attr.Value)
		}
	}

	return identity, nil
}

func (c *Cognito) PasswordAuthenticate(ctx context.Context, username, password string) (_ *Tokens, err error) {
	ctx, span := c.startSpan(ctx, "PasswordAuthenticate")
	defer func() { c.endSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := map[string]string{
		"USERNAME": username,
		"PASSWORD": password,
	}
	if sh := c.secretHash(username); sh != nil {
		params["SECRET_HASH"] = aws.ToString(sh)
	}

	out, err := c.client.InitiateAuth(ctx, &cip.InitiateAuthInput{
		AuthFlow:       types.AuthFlowTypeUserPasswordAuth,
		ClientId:       aws.String(c.clientID),
		AuthParameters: params,
	})
	if err != nil {
		return nil, c.mapError(err)
	}

	result := out.AuthenticationResult
	if result == nil {
		return nil, goerror.NewProvider(nil, "Authentication challenge not supported", goerror.CodeUnauthorized)
	}

	return &Tokens{
		AccessToken:  aws.ToString(result.AccessToken),
		IDToken:      aws.ToString(result.IdToken),
		RefreshToken: aws.ToString(result.RefreshToken),
		ExpiresIn:    result.ExpiresIn,
	}, nil
}

// secretHash computes base64(HMAC-SHA256(username || clientId)) when a
// client secret is configured, nil otherwise.
func (c *Cognito) secretHash(username string) *string {
	if c.secret == nil {
		return nil
	}

	mac, err := c.secret.Hash(username + c.clientID)
	if err != nil {
		return nil
	}

	return aws.String(base64.StdEncoding.EncodeToString(mac))
}

func (c *Cognito) mapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return goerror.NewProvider(err, "Identity provider timed out", goerror.CodeTimeout)
	}

	var ae apiError
	if !errors.As(err, &ae) {
		return goerror.NewProvider(err, "Identity provider unavailable", goerror.CodeInternal)
	}

	switch ae.ErrorCode() {
	case "NotAuthorizedException", "CodeMismatchException", "ExpiredCodeException":
		return goerror.NewProvider(err, ae.ErrorMessage(), goerror.CodeUnauthorized)
	case "UserNotFoundException":
		return goerror.NewProvider(err, ae.ErrorMessage(), goerror.CodeNotFound)
	case "UsernameExistsException", "InvalidPasswordException", "InvalidParameterException", "UserNotConfirmedException":
		return goerror.NewProvider(err, ae.ErrorMessage(), goerror.CodeInvalidInput)
	case "LimitExceededException", "TooManyRequestsException":
		return goerror.NewProvider(err, ae.ErrorMessage(), goerror.CodeTooManyRequest)
	default:
		return goerror.NewProvider(err, ae.ErrorMessage(), goerror.CodeInternal)
	}
}

func (c *Cognito) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("verification.outbound.provider").Start(ctx, name)
}

func (c *Cognito) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
