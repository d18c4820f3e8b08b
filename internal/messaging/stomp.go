package messaging

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/go-stomp/stomp/v3"
	"github.com/go-stomp/stomp/v3/frame"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// STOMPConfig lists brokers in failover order. CertFile and KeyFile enable
// TLS client authentication.
type STOMPConfig struct {
	Hosts             []string
	DestinationPrefix string
	CertFile          string
	KeyFile           string
	Login             string
	Passcode          string
}

// STOMPPublisher sends to "<prefix><topic>" destinations, e.g. /topic/pdc.changes.
// The first reachable host wins; a failed send drops the connection so the
// next call starts again from the first host. Waiting for the connection and
// connecting both end at the caller's context deadline.
type STOMPPublisher struct {
	cfg       STOMPConfig
	tlsConfig *tls.Config
	logger    *zap.Logger

	sem  *semaphore.Weighted
	conn *stomp.Conn
}

func NewSTOMPPublisher(cfg STOMPConfig, logger *zap.Logger) (*STOMPPublisher, error) {
	if len(cfg.Hosts) == 0 {
		return nil, errors.New("stomp: no hosts configured")
	}
	p := &STOMPPublisher{cfg: cfg, logger: logger.Named("stomp"), sem: semaphore.NewWeighted(1)}
	if cfg.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("stomp: load client certificate: %w", err)
		}
		p.tlsConfig = &tls.Config{Certificates: []tls.Certificate{cert}, MinVersion: tls.VersionTLS12}
	}
	return p, nil
}

func (p *STOMPPublisher) Publish(ctx context.Context, topic string, msg Message) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)

	if err := p.ensure(ctx); err != nil {
		return err
	}

	var sendOpts []func(*frame.Frame) error
	for key, value := range msg.Headers() {
		if key == "content_type" {
			continue
		}
		sendOpts = append(sendOpts, stomp.SendOpt.Header(key, value))
	}
	if err := p.conn.Send(p.cfg.DestinationPrefix+topic, "application/json", msg.Payload, sendOpts...); err != nil {
		p.disconnect()
		return err
	}
	return nil
}

func (p *STOMPPublisher) ensure(ctx context.Context) error {
	if p.conn != nil {
		return nil
	}

	budget, err := connectBudget(ctx)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	var opts []func(*stomp.Conn) error
	if p.cfg.Login != "" {
		opts = append(opts, stomp.ConnOpt.Login(p.cfg.Login, p.cfg.Passcode))
	}

	var errs []error
	for _, host := range p.cfg.Hosts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		conn, err := p.dial(ctx, host, opts)
		if err != nil {
			p.logger.Warn("stomp host unreachable", zap.String("host", host), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", host, err))
			continue
		}
		p.conn = conn
		p.logger.Info("stomp connected", zap.String("host", host))
		return nil
	}
	return fmt.Errorf("stomp: no reachable host: %w", errors.Join(errs...))
}

// dial opens the transport and runs the CONNECT handshake, both bounded by
// the deadline of ctx.
func (p *STOMPPublisher) dial(ctx context.Context, host string, opts []func(*stomp.Conn) error) (*stomp.Conn, error) {
	var (
		netConn net.Conn
		err     error
	)
	if p.tlsConfig != nil {
		dialer := &tls.Dialer{Config: p.tlsConfig}
		netConn, err = dialer.DialContext(ctx, "tcp", host)
	} else {
		var dialer net.Dialer
		netConn, err = dialer.DialContext(ctx, "tcp", host)
	}
	if err != nil {
		return nil, err
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = netConn.SetWriteDeadline(deadline)
	}
	if hostname, _, splitErr := net.SplitHostPort(host); splitErr == nil {
		opts = append([]func(*stomp.Conn) error{stomp.ConnOpt.Host(hostname)}, opts...)
	}
	conn, err := stomp.ConnectWithContext(ctx, netConn, opts...)
	if err != nil {
		_ = netConn.Close()
		return nil, err
	}
	_ = netConn.SetWriteDeadline(time.Time{})
	return conn, nil
}

func (p *STOMPPublisher) disconnect() {
	if p.conn != nil {
		_ = p.conn.Disconnect()
		p.conn = nil
	}
}

func (p *STOMPPublisher) Name() string { return "stomp" }

func (p *STOMPPublisher) Close() error {
	if err := p.sem.Acquire(context.Background(), 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	p.disconnect()
	return nil
}
