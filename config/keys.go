package config

// Setting keys consumed by the secret coordinator and the connection descriptors.
const (
	KeyHostname       = "hostname"
	KeyBackupHostname = "backup_hostname"
	KeySecretKeyBase  = "secret_key_base"

	KeyCDNURL            = "cdn_url"
	KeyCDNOriginHostname = "cdn_origin_hostname"

	KeyDBPool               = "db_pool"
	KeyDBConnectTimeout     = "db_connect_timeout"
	KeyDBSocket             = "db_socket"
	KeyDBHost               = "db_host"
	KeyDBBackupHost         = "db_backup_host"
	KeyDBPort               = "db_port"
	KeyDBBackupPort         = "db_backup_port"
	KeyDBUsername           = "db_username"
	KeyDBPassword           = "db_password"
	KeyDBReplicaHost        = "db_replica_host"
	KeyDBReplicaPort        = "db_replica_port"
	KeyDBName               = "db_name"
	KeyDBPreparedStatements = "db_prepared_statements"
	KeyDBAdvisoryLocks      = "db_advisory_locks"
	KeyDBSSLMode            = "db_sslmode"
	KeyDBSSLCert            = "db_sslcert"
	KeyDBSSLKey             = "db_sslkey"
	KeyDBSSLRootCert        = "db_sslrootcert"
	KeyDBVariablesPrefix    = "db_variables_"

	KeyConnectionReaperAge      = "connection_reaper_age"
	KeyConnectionReaperInterval = "connection_reaper_interval"

	KeyRedisHost               = "redis_host"
	KeyRedisPort               = "redis_port"
	KeyRedisReplicaHost        = "redis_replica_host"
	KeyRedisReplicaPort        = "redis_replica_port"
	KeyRedisSlaveHost          = "redis_slave_host"
	KeyRedisSlavePort          = "redis_slave_port"
	KeyRedisUsername           = "redis_username"
	KeyRedisPassword           = "redis_password"
	KeyRedisDB                 = "redis_db"
	KeyRedisSkipClientCommands = "redis_skip_client_commands"
	KeyRedisUseSSL             = "redis_use_ssl"
	KeyRedisSSL                = "redis_ssl"
	KeyRedisSSLCert            = "redis_ssl_cert"
	KeyRedisSSLKey             = "redis_ssl_key"
	KeyRedisSSLCA              = "redis_ssl_ca"

	KeyMessageBusRedisEnabled = "message_bus_redis_enabled"
	KeyMessageBusRedisPrefix  = "message_bus_"

	KeySMTPAddress           = "smtp_address"
	KeySMTPPort              = "smtp_port"
	KeySMTPDomain            = "smtp_domain"
	KeySMTPUserName          = "smtp_user_name"
	KeySMTPPassword          = "smtp_password"
	KeySMTPAuthentication    = "smtp_authentication"
	KeySMTPEnableStartTLS    = "smtp_enable_start_tls"
	KeySMTPOpenSSLVerifyMode = "smtp_openssl_verify_mode"
	KeySMTPForceTLS          = "smtp_force_tls"
	KeySMTPOpenTimeout       = "smtp_open_timeout"
	KeySMTPReadTimeout       = "smtp_read_timeout"

	KeyS3Bucket          = "s3_bucket"
	KeyS3Region          = "s3_region"
	KeyS3AccessKeyID     = "s3_access_key_id"
	KeyS3SecretAccessKey = "s3_secret_access_key"
	KeyS3UseIAMProfile   = "s3_use_iam_profile"

	KeySecretStore  = "secret_store"
	KeyVaultKVMount = "vault_kv_mount"
	KeyVaultKVPath  = "vault_kv_path"

	KeyServiceName     = "service_name"
	KeyEnvironment     = "environment"
	KeyMetricsEnabled  = "metrics_enabled"
	KeyMetricsEndpoint = "metrics_endpoint"
	KeyMetricsProtocol = "metrics_protocol"
	KeyMetricsInsecure = "metrics_insecure"
	KeyMetricsInterval = "metrics_interval"
)
