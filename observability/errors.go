package observability

import "errors"

// ErrNilConfig is returned when Validate is called on a nil Config pointer.
var ErrNilConfig = errors.New("observability: config is nil")

// ErrMissingServiceName is returned when metrics are enabled but no service name is configured.
var ErrMissingServiceName = errors.New("observability: service name is required when metrics are enabled")

// ErrInvalidProtocol is returned when the protocol is not "http" or "grpc".
var ErrInvalidProtocol = errors.New("observability: protocol must be either 'http' or 'grpc'")

// ErrInvalidEndpointFormat is returned when the endpoint format doesn't match the protocol.
// gRPC endpoints must NOT include http:// or https:// scheme (use "host:port" format).
var ErrInvalidEndpointFormat = errors.New("observability: invalid endpoint format for protocol")

// ErrInvalidInterval is returned when the export interval is not positive.
var ErrInvalidInterval = errors.New("observability: export interval must be positive")
