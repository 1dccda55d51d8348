package handshake

import "golang.org/x/oauth2"

// StartOptions are the prompt-control knobs accepted on the handshake start
// endpoint. Zero values fall back to the defaults below.
type StartOptions struct {
	Prompt               string
	AccessType           string
	IncludeGrantedScopes string // "true"/"false"; empty means default
	LoginHint            *string
	AuthUser             string
	ApprovalPrompt       string
	ForceSelection       bool
}

const (
	defaultPrompt     = "select_account"
	defaultAccessType = "online"
)

// AuthCodeOptions maps the start options onto oauth2 auth-code URL parameters.
// ForceSelection wins over whatever prompt the caller supplied: the provider
// must re-ask for an account even when it has cached consent.
func (o StartOptions) AuthCodeOptions() []oauth2.AuthCodeOption {
	prompt := o.Prompt
	if prompt == "" {
		prompt = defaultPrompt
	}
	accessType := o.AccessType
	if accessType == "" {
		accessType = defaultAccessType
	}
	includeGranted := "false"
	if o.IncludeGrantedScopes != "" {
		includeGranted = o.IncludeGrantedScopes
	}

	approvalPrompt := o.ApprovalPrompt
	if o.ForceSelection {
		prompt = "select_account"
		approvalPrompt = "force"
	}

	opts := []oauth2.AuthCodeOption{
		oauth2.SetAuthURLParam("prompt", prompt),
		oauth2.SetAuthURLParam("access_type", accessType),
		oauth2.SetAuthURLParam("include_granted_scopes", includeGranted),
	}
	if o.LoginHint != nil {
		// An explicitly empty login_hint clears any hint the provider cached.
		opts = append(opts, oauth2.SetAuthURLParam("login_hint", *o.LoginHint))
	}
	if o.AuthUser != "" {
		opts = append(opts, oauth2.SetAuthURLParam("authuser", o.AuthUser))
	}
	if approvalPrompt != "" {
		opts = append(opts, oauth2.SetAuthURLParam("approval_prompt", approvalPrompt))
	}
	return opts
}
