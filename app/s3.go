package app

import (
	"strings"

	"github.com/gaborage/go-settings/config"
)

// UseS3 reports whether uploads go to S3: a bucket and region are configured
// together with either an instance profile or a static key pair. The answer is
// memoized until ResetS3Cache.
func (a *App) UseS3() bool {
	a.s3mu.Lock()
	defer a.s3mu.Unlock()

	if a.useS3 == nil {
		s := a.settings
		use := s.Present(config.KeyS3Bucket) && s.Present(config.KeyS3Region) &&
			(s.Truthy(config.KeyS3UseIAMProfile) ||
				(s.Present(config.KeyS3AccessKeyID) && s.Present(config.KeyS3SecretAccessKey)))
		a.useS3 = &use
	}
	return *a.useS3
}

// S3BucketName returns the lowercased bucket part of s3_bucket, which may carry
// a key prefix after a slash. It is "" when no bucket is configured.
func (a *App) S3BucketName() string {
	a.s3mu.Lock()
	defer a.s3mu.Unlock()

	if a.s3Bucket == nil {
		name := ""
		if v := a.settings.Get(config.KeyS3Bucket); v.Present() {
			name, _, _ = strings.Cut(strings.ToLower(strings.TrimSpace(v.String())), "/")
		}
		a.s3Bucket = &name
	}
	return *a.s3Bucket
}

// ResetS3Cache forgets the memoized S3 answers.
func (a *App) ResetS3Cache() {
	a.s3mu.Lock()
	defer a.s3mu.Unlock()
	a.useS3 = nil
	a.s3Bucket = nil
}
