// Package multicast implements the fire-and-forget UDP market-data
// publisher: spec.md §4.F. Grounded on original_source/'s
// MulticastPublisher (a thin wrapper over a UDP client socket); there
// is no equivalent in the teacher tree, which only ever speaks TCP, so
// this package is new code in the teacher's idiom rather than an
// adaptation of an existing teacher file.
package multicast

import (
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
)

// Publisher sends best-effort UDP datagrams to a multicast group.
// Implements engine.MarketDataTransport.
type Publisher struct {
	conn *net.UDPConn
}

// Dial resolves group:port and opens a UDP socket for sending to it.
func Dial(group string, port int) (*Publisher, error) {
	addr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", group, port))
	if err != nil {
		return nil, fmt.Errorf("multicast: resolve %s:%d: %w", group, port, err)
	}
	conn, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, fmt.Errorf("multicast: dial %s:%d: %w", group, port, err)
	}
	return &Publisher{conn: conn}, nil
}

// Send writes line as one UDP datagram. Best-effort: a write failure is
// logged and dropped, never retried, matching spec.md §7's policy for
// the multicast path.
func (p *Publisher) Send(line string) error {
	_, err := p.conn.Write([]byte(line + "\n"))
	if err != nil {
		log.Warn().Err(err).Msg("multicast send failed")
	}
	return err
}

// Close releases the underlying socket.
func (p *Publisher) Close() error {
	return p.conn.Close()
}
