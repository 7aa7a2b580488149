package webui

// Credentials are sent once to the login endpoint
type Credentials struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

// StatusMessage is the generic {status, message} body the service answers with
type StatusMessage struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
}

// LoginResult describes how the service answered the login request
type LoginResult struct {
	StatusCode int
	Status     bool
	Message    string
}

// OK reports whether the service accepted the credentials
func (r LoginResult) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300 && r.Status
}

// ClientPayload is the body of a client creation request
type ClientPayload struct {
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	AllocatedIPs    []string `json:"allocated_ips"`
	AllowedIPs      []string `json:"allowed_ips"`
	ExtraAllowedIPs []string `json:"extra_allowed_ips"`
	UseServerDNS    bool     `json:"use_server_dns"`
	Enabled         bool     `json:"enabled"`
	PublicKey       string   `json:"public_key"`
	PresharedKey    string   `json:"preshared_key"`
}

// ExistingClient is a client already registered on the service
type ExistingClient struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	PublicKey string `json:"public_key"`
}

// clientData mirrors one element of the /api/clients listing
type clientData struct {
	Client *ExistingClient `json:"Client"`
}

// Response is the raw answer to a creation request
type Response struct {
	StatusCode int
	Body       []byte
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}
