package app

import "github.com/gaborage/go-settings/config"

// SMTPSettings describes the outgoing mail server. Optional fields are omitted
// from JSON when not configured.
type SMTPSettings struct {
	Address            string `json:"address"`
	Port               int    `json:"port,omitempty"`
	Domain             string `json:"domain,omitempty"`
	UserName           string `json:"user_name,omitempty"`
	Password           string `json:"password,omitempty"`
	Authentication     string `json:"authentication,omitempty"`
	EnableStartTLSAuto bool   `json:"enable_starttls_auto"`
	OpenSSLVerifyMode  string `json:"openssl_verify_mode,omitempty"`
	TLS                bool   `json:"tls,omitempty"`
	OpenTimeout        int    `json:"open_timeout,omitempty"`
	ReadTimeout        int    `json:"read_timeout,omitempty"`
}

// SMTPSettings returns the mail server settings, or nil when smtp_address is
// not configured. Authentication is only set when credentials are.
func (a *App) SMTPSettings() *SMTPSettings {
	s := a.settings
	if !s.Present(config.KeySMTPAddress) {
		return nil
	}

	smtp := &SMTPSettings{
		Address:            s.GetString(config.KeySMTPAddress),
		Port:               s.GetInt(config.KeySMTPPort),
		Domain:             presentString(s, config.KeySMTPDomain),
		UserName:           presentString(s, config.KeySMTPUserName),
		Password:           presentString(s, config.KeySMTPPassword),
		EnableStartTLSAuto: s.Truthy(config.KeySMTPEnableStartTLS),
		OpenSSLVerifyMode:  presentString(s, config.KeySMTPOpenSSLVerifyMode),
		TLS:                s.Truthy(config.KeySMTPForceTLS),
		OpenTimeout:        s.GetInt(config.KeySMTPOpenTimeout),
		ReadTimeout:        s.GetInt(config.KeySMTPReadTimeout),
	}
	if smtp.UserName != "" || smtp.Password != "" {
		smtp.Authentication = presentString(s, config.KeySMTPAuthentication)
	}
	return smtp
}

func presentString(s *config.Settings, key string) string {
	if v := s.Get(key); v.Present() {
		return v.String()
	}
	return ""
}
