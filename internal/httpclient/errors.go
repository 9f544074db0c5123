package httpclient

import "errors"

var (
	// ErrInvalidProxyAddress is returned for a proxy that is not host:port.
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrProxyCannotConnect is returned when the proxy port refuses the
	// connection.
	ErrProxyCannotConnect = errors.New("cannot connect to SOCKS5 proxy")

	// ErrProxyNotSOCKS5 is returned when the proxy does not answer the
	// SOCKS5 greeting.
	ErrProxyNotSOCKS5 = errors.New("proxy did not answer as SOCKS5")
)
