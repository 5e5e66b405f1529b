package proxy

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

const DefaultTimeout = 120 * time.Second

func NewSocksClient(socksAddr string) (*http.Client, error) {
	addr := strings.TrimPrefix(strings.TrimSpace(socksAddr), "socks5://")
	if addr == "" {
		return nil, fmt.Errorf("socks proxy address is empty")
	}
	dialer, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("socks5 dialer for %s: %w", addr, err)
	}

	dial := dialer.Dial
	if ctxDialer, ok := dialer.(proxy.ContextDialer); ok {
		transport := &http.Transport{DialContext: ctxDialer.DialContext}
		return &http.Client{Transport: transport, Timeout: DefaultTimeout}, nil
	}
	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dial(network, addr)
		},
	}
	return &http.Client{Transport: transport, Timeout: DefaultTimeout}, nil
}

func NewClient(socksAddr string) (*http.Client, error) {
	if strings.TrimSpace(socksAddr) == "" {
		return &http.Client{Timeout: DefaultTimeout}, nil
	}
	return NewSocksClient(socksAddr)
}
