package config

import "github.com/gasyway/gasyway/pkg/service/identity"

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, postgresDSN, projectID string) *Repository {
	return &Repository{
		backend:     backend,
		postgresDSN: postgresDSN,
		projectID:   projectID,
	}
}

// NewAppForTest creates an App config for testing purposes
func NewAppForTest(path, syncInterval string, autoFix bool) *App {
	return &App{path: path, syncInterval: syncInterval, autoFix: autoFix}
}

// NewIdentityForTest creates an Identity config for testing purposes
func NewIdentityForTest(backend, url, serviceKey, seedFile string) *Identity {
	return &Identity{
		backend:    backend,
		url:        url,
		serviceKey: serviceKey,
		perPage:    identity.DefaultPerPage,
		seedFile:   seedFile,
	}
}

// NewAuthForTest creates an Auth config for testing purposes
func NewAuthForTest(jwksURL, jwtSecret, audience, noAuth string) *Auth {
	return &Auth{
		jwksURL:   jwksURL,
		jwtSecret: jwtSecret,
		audience:  audience,
		noAuth:    noAuth,
	}
}

// NewSlackForTest creates a Slack config for testing purposes
func NewSlackForTest(botToken, channelID string) *Slack {
	return &Slack{botToken: botToken, channelID: channelID}
}

// NewArchiveForTest creates an Archive config for testing purposes
func NewArchiveForTest(backend, bucket string) *Archive {
	return &Archive{backend: backend, bucket: bucket}
}

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}
