package oauth

import (
	"encoding/json"

	"github.com/fwojciec/sitepush"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ClientSecret is an OAuth client registration downloaded from the Google
// Cloud console.
type ClientSecret struct {
	ProjectID string
	Config    *oauth2.Config
}

// ParseClientSecret parses a client secret JSON file in either the
// "installed" or "web" layout. The returned config requests the indexing
// scope.
func ParseClientSecret(data []byte) (*ClientSecret, error) {
	cfg, err := google.ConfigFromJSON(data, sitepush.IndexingScope)
	if err != nil {
		return nil, sitepush.Errorf(sitepush.EINVALID, "invalid client secret: %v", err)
	}

	var raw struct {
		Installed *struct {
			ProjectID string `json:"project_id"`
		} `json:"installed"`
		Web *struct {
			ProjectID string `json:"project_id"`
		} `json:"web"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, sitepush.Errorf(sitepush.EINVALID, "invalid client secret: %v", err)
	}

	var projectID string
	switch {
	case raw.Web != nil:
		projectID = raw.Web.ProjectID
	case raw.Installed != nil:
		projectID = raw.Installed.ProjectID
	}
	if projectID == "" {
		return nil, sitepush.Errorf(sitepush.EINVALID, "client secret has no project_id")
	}

	return &ClientSecret{ProjectID: projectID, Config: cfg}, nil
}

// Credential builds a credential for accountID from the client secret and
// a refresh token.
func (s *ClientSecret) Credential(accountID, refreshToken string) *sitepush.Credential {
	return &sitepush.Credential{
		AccountID:    accountID,
		ProjectID:    s.ProjectID,
		ClientID:     s.Config.ClientID,
		ClientSecret: s.Config.ClientSecret,
		RefreshToken: refreshToken,
		Scope:        sitepush.IndexingScope,
	}
}
