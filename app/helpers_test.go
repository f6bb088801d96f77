package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gaborage/go-settings/config"
)

func TestUseS3(t *testing.T) {
	tests := []struct {
		name   string
		values map[string]string
		want   bool
	}{
		{name: "nothing configured", want: false},
		{
			name:   "static keys",
			values: map[string]string{"s3_bucket": "b", "s3_region": "us-east-1", "s3_access_key_id": "id", "s3_secret_access_key": "key"},
			want:   true,
		},
		{
			name:   "instance profile",
			values: map[string]string{"s3_bucket": "b", "s3_region": "us-east-1", "s3_use_iam_profile": "true"},
			want:   true,
		},
		{
			name:   "instance profile disabled",
			values: map[string]string{"s3_bucket": "b", "s3_region": "us-east-1", "s3_use_iam_profile": "false"},
			want:   false,
		},
		{
			name:   "missing secret key",
			values: map[string]string{"s3_bucket": "b", "s3_region": "us-east-1", "s3_access_key_id": "id"},
			want:   false,
		},
		{
			name:   "missing region",
			values: map[string]string{"s3_bucket": "b", "s3_use_iam_profile": "true"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t, tt.values, func(o *Options) { o.SkipRedis = true })
			assert.Equal(t, tt.want, a.UseS3())
		})
	}
}

func TestUseS3IsMemoizedUntilReset(t *testing.T) {
	a := newTestApp(t, nil, func(o *Options) { o.SkipRedis = true })
	require.False(t, a.UseS3())

	a.Settings().SetProvider(config.NewFileProviderFromMap(map[string]string{
		"s3_bucket": "b", "s3_region": "r", "s3_use_iam_profile": "true",
	}))
	assert.False(t, a.UseS3())

	a.ResetS3Cache()
	assert.True(t, a.UseS3())
}

func TestS3BucketName(t *testing.T) {
	tests := []struct {
		bucket string
		want   string
	}{
		{bucket: "", want: ""},
		{bucket: "uploads", want: "uploads"},
		{bucket: "My-Bucket/site/uploads", want: "my-bucket"},
	}

	for _, tt := range tests {
		t.Run(tt.bucket, func(t *testing.T) {
			a := newTestApp(t, map[string]string{"s3_bucket": tt.bucket}, func(o *Options) { o.SkipRedis = true })
			assert.Equal(t, tt.want, a.S3BucketName())
		})
	}
}

func TestSMTPSettings(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		a := newTestApp(t, nil, func(o *Options) { o.SkipRedis = true })
		assert.Nil(t, a.SMTPSettings())
	})

	t.Run("defaults without credentials", func(t *testing.T) {
		a := newTestApp(t, map[string]string{"smtp_address": "mail.example.com"}, func(o *Options) { o.SkipRedis = true })

		got := a.SMTPSettings()
		require.NotNil(t, got)
		assert.Equal(t, &SMTPSettings{
			Address:            "mail.example.com",
			Port:               25,
			EnableStartTLSAuto: true,
			OpenTimeout:        5,
			ReadTimeout:        30,
		}, got)
	})

	t.Run("credentials enable authentication", func(t *testing.T) {
		a := newTestApp(t, map[string]string{
			"smtp_address":             "mail.example.com",
			"smtp_port":                "587",
			"smtp_user_name":           "mailer",
			"smtp_password":            "hunter2",
			"smtp_authentication":      "login",
			"smtp_openssl_verify_mode": "none",
			"smtp_force_tls":           "true",
			"smtp_enable_start_tls":    "false",
		}, func(o *Options) { o.SkipRedis = true })

		got := a.SMTPSettings()
		require.NotNil(t, got)
		assert.Equal(t, 587, got.Port)
		assert.Equal(t, "mailer", got.UserName)
		assert.Equal(t, "login", got.Authentication)
		assert.Equal(t, "none", got.OpenSSLVerifyMode)
		assert.True(t, got.TLS)
		assert.False(t, got.EnableStartTLSAuto)
	})
}
