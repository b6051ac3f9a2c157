// Package discovery advertises the gRPC endpoint over mDNS so observers on
// the local network can find it without configuration.
package discovery

import (
	"context"
	"fmt"
	"net"
	"strings"

	"github.com/grandcat/zeroconf"
	"github.com/rs/zerolog/log"
)

const (
	// ServiceType is the DNS-SD service type of a darkwatt server.
	ServiceType = "_darkwatt._tcp"
	domainLocal = "local."
)

// Server is a darkwatt endpoint found on the network.
type Server struct {
	Instance string
	Hostname string
	IP       net.IP
	Port     int
	Version  string
	TLS      bool
}

// Addr returns host:port suitable for dialing.
func (s Server) Addr() string {
	host := s.Hostname
	if s.IP != nil {
		host = s.IP.String()
	}
	return net.JoinHostPort(host, fmt.Sprint(s.Port))
}

func (s Server) String() string {
	return fmt.Sprintf("%s at %s", s.Instance, s.Addr())
}

// Advertise registers the service and keeps it announced until ctx is done.
func Advertise(ctx context.Context, instance string, port int, version string, tls bool) error {
	txt := []string{"version=" + version, fmt.Sprintf("tls=%t", tls)}
	server, err := zeroconf.Register(instance, ServiceType, domainLocal, port, txt, nil)
	if err != nil {
		return fmt.Errorf("registering mDNS service: %w", err)
	}
	log.Info().Str("instance", instance).Int("port", port).Msg("advertising over mDNS")

	<-ctx.Done()
	server.Shutdown()
	return nil
}

// Browse looks for servers until ctx is done. Both channels are closed when
// browsing finishes.
func Browse(ctx context.Context) (<-chan Server, <-chan error) {
	servers := make(chan Server)
	errs := make(chan error, 1)

	go func() {
		defer close(servers)
		defer close(errs)

		resolver, err := zeroconf.NewResolver(nil)
		if err != nil {
			errs <- fmt.Errorf("creating mDNS resolver: %w", err)
			return
		}

		entries := make(chan *zeroconf.ServiceEntry)
		done := make(chan struct{})
		go func() {
			defer close(done)
			seen := make(map[string]bool)
			for {
				select {
				case entry, ok := <-entries:
					if !ok {
						return
					}
					s := parseEntry(entry)
					if seen[s.Instance] {
						continue
					}
					seen[s.Instance] = true
					select {
					case servers <- s:
					case <-ctx.Done():
						return
					}
				case <-ctx.Done():
					return
				}
			}
		}()

		if err := resolver.Browse(ctx, ServiceType, domainLocal, entries); err != nil {
			errs <- fmt.Errorf("browsing for servers: %w", err)
			return
		}
		<-ctx.Done()
		<-done
	}()

	return servers, errs
}

func parseEntry(entry *zeroconf.ServiceEntry) Server {
	s := Server{
		Instance: entry.Instance,
		Hostname: entry.HostName,
		Port:     entry.Port,
	}
	if len(entry.AddrIPv4) > 0 {
		s.IP = entry.AddrIPv4[0]
	} else if len(entry.AddrIPv6) > 0 {
		s.IP = entry.AddrIPv6[0]
	}

	for _, txt := range entry.Text {
		key, value, ok := strings.Cut(txt, "=")
		if !ok {
			continue
		}
		switch key {
		case "version":
			s.Version = value
		case "tls":
			s.TLS = value == "true"
		}
	}
	return s
}
