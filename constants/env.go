package constants

const (
	APPNAME    = "fieldform"
	APPVERSION = "0.1.0"

	EnvLogLevel    = "FIELDFORM_LOG_LEVEL"
	EnvDebug       = "FIELDFORM_DEBUG"
	EnvStoreDriver = "FIELDFORM_STORE_DRIVER"
	EnvStoreDSN    = "FIELDFORM_STORE_DSN"

	EnvOtelEnabled  = "FIELDFORM_OTEL_ENABLED"
	EnvOtelEndpoint = "FIELDFORM_OTEL_ENDPOINT"
	EnvOtelProtocol = "FIELDFORM_OTEL_PROTOCOL"
)
