package accounts

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type logoutRequest struct {
	SessionToken string `json:"sessionToken"`
}

type configResponse struct {
	OK                 bool `json:"ok"`
	BootstrapRequired  bool `json:"bootstrapRequired"`
	RequiresAdminToken bool `json:"requiresAdminToken"`
	SessionHours       int  `json:"sessionHours"`
}

type sessionUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Source   string `json:"source"`
}

type sessionResponse struct {
	OK            bool         `json:"ok"`
	Authenticated bool         `json:"authenticated"`
	User          *sessionUser `json:"user,omitempty"`
}

type loginResponse struct {
	OK           bool   `json:"ok"`
	User         User   `json:"user"`
	SessionToken string `json:"sessionToken"`
}

type userResponse struct {
	OK   bool `json:"ok"`
	User User `json:"user"`
}

type usersResponse struct {
	OK    bool   `json:"ok"`
	Users []User `json:"users"`
}

type adminHealthResponse struct {
	OK                 bool   `json:"ok"`
	RequiresAdminToken bool   `json:"requiresAdminToken"`
	Authorized         bool   `json:"authorized"`
	Role               string `json:"role"`
	Username           string `json:"username"`
}
