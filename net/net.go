// SPDX-License-Identifier: GPL-2.0-or-later

// Package net moves kart state datagrams between peers, over UDP or an
// in-process loopback. Delivery is unreliable: old datagrams are dropped
// and nothing is resent.
package net

import (
	"bytes"
	"encoding/binary"
	"io"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"gokart/conlog"
)

const (
	maxMessage = 32008
	// The channel buffer holds a few ticks worth of datagrams so a slow
	// reader on the simulation side never blocks the socket goroutines.
	chanBufLength = 16

	NETFLAG_LENGTH_MASK = 0x0000ffff
	NETFLAG_FLAG_MASK   = 0xffff0000
	NETFLAG_UNRELIABLE  = 0x00100000
	NETFLAG_CTL         = 0x80000000

	MAX_DATAGRAM = 32000

	// Control commands.
	ccreqHello = 0x01

	netProtocolVersion = 1
	gameName           = "GOKART\x00"
)

var (
	ErrClosed = errors.New("connection is closed")
	// ErrBufferFull is returned by SendUnreliable when the datagram was
	// dropped because the send queue is full.
	ErrBufferFull = errors.New("send buffer full")
	ErrTooLarge   = errors.New("datagram too large")
)

// Conn is one peer link. Receive and SendUnreliable never block.
type Conn struct {
	id   uuid.UUID
	con  net.Conn
	addr string
	in   <-chan []byte
	out  chan<- []byte

	mu     sync.Mutex
	peer   uuid.UUID
	closed bool
}

// ID is the local end's id, sent to the peer in the hello message.
func (c *Conn) ID() uuid.UUID {
	return c.id
}

// Peer is the remote end's id, uuid.Nil until its hello arrived.
func (c *Conn) Peer() uuid.UUID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.peer
}

func (c *Conn) setPeer(id uuid.UUID) {
	c.mu.Lock()
	c.peer = id
	c.mu.Unlock()
}

func (c *Conn) Address() string {
	if c.con != nil {
		return c.con.RemoteAddr().String()
	}
	return c.addr
}

// DialUDP opens a connected UDP socket from laddr (may be empty) to raddr.
func DialUDP(laddr, raddr string) (*Conn, error) {
	var la *net.UDPAddr
	if laddr != "" {
		a, err := net.ResolveUDPAddr("udp", laddr)
		if err != nil {
			return nil, errors.Wrapf(err, "could not resolve address %v", laddr)
		}
		la = a
	}
	ra, err := net.ResolveUDPAddr("udp", raddr)
	if err != nil {
		return nil, errors.Wrapf(err, "could not resolve address %v", raddr)
	}
	c, err := net.DialUDP("udp", la, ra)
	if err != nil {
		return nil, errors.Wrapf(err, "could not connect to host %v", raddr)
	}
	return NewConn(c)
}

// NewConn runs the datagram framing over c, which must preserve message
// boundaries (a UDP socket or net.Pipe).
func NewConn(c net.Conn) (*Conn, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return nil, errors.Wrap(err, "peer id")
	}
	in := make(chan []byte, chanBufLength)
	out := make(chan []byte, chanBufLength)
	conn := &Conn{
		id:  id,
		con: c,
		in:  in,
		out: out,
	}
	go readUDP(c, in, conn.setPeer)
	go writeUDP(c, out, id)
	return conn, nil
}

// Loopback returns two connected in-process ends.
func Loopback() (*Conn, *Conn) {
	a2b := make(chan []byte, chanBufLength)
	b2a := make(chan []byte, chanBufLength)
	a := &Conn{id: uuid.Must(uuid.NewV7()), addr: "local", in: b2a, out: a2b}
	b := &Conn{id: uuid.Must(uuid.NewV7()), addr: "local", in: a2b, out: b2a}
	a.peer, b.peer = b.id, a.id
	return a, b
}

func hello(id uuid.UUID) []byte {
	var buf bytes.Buffer
	length := 4 + 1 + len(gameName) + 1 + len(id)
	binary.Write(&buf, binary.BigEndian, uint32(length|NETFLAG_CTL))
	buf.WriteByte(ccreqHello)
	buf.WriteString(gameName)
	buf.WriteByte(netProtocolVersion)
	buf.Write(id[:])
	return buf.Bytes()
}

// parseHello returns the sender id of a control datagram body.
func parseHello(r *bytes.Reader) (uuid.UUID, bool) {
	cmd, err := r.ReadByte()
	if err != nil || cmd != ccreqHello {
		return uuid.Nil, false
	}
	name := make([]byte, len(gameName))
	if _, err := io.ReadFull(r, name); err != nil || string(name) != gameName {
		return uuid.Nil, false
	}
	v, err := r.ReadByte()
	if err != nil || v != netProtocolVersion {
		conlog.Printf("peer speaks protocol version %d, want %d", v, netProtocolVersion)
		return uuid.Nil, false
	}
	var id uuid.UUID
	if _, err := io.ReadFull(r, id[:]); err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func readUDP(c net.Conn, out chan<- []byte, onHello func(uuid.UUID)) {
	defer c.Close()
	defer close(out)

	unreliableSequence := uint32(0)
	b := make([]byte, maxMessage)
	for {
		i, err := c.Read(b)
		if err != nil {
			if err != io.EOF && !errors.Is(err, net.ErrClosed) && !errors.Is(err, io.ErrClosedPipe) {
				conlog.Printf("Read failed: %v", err)
			}
			return
		}
		if i < 4 {
			continue
		}
		// first 4 byte are flag|length
		// unreliable datagrams carry a 4 byte sequence number next
		var length uint32
		reader := bytes.NewReader(b[:i])
		binary.Read(reader, binary.BigEndian, &length)
		flags := length & NETFLAG_FLAG_MASK
		length = length & NETFLAG_LENGTH_MASK
		if uint32(i) != length {
			// Just ignore this message. It seems broken.
			continue
		}
		switch {
		case flags&NETFLAG_CTL != 0:
			if id, ok := parseHello(reader); ok && onHello != nil {
				onHello(id)
			}
		case flags&NETFLAG_UNRELIABLE != 0:
			if i < 8 {
				continue
			}
			var sequence uint32
			binary.Read(reader, binary.BigEndian, &sequence)
			if sequence < unreliableSequence {
				// Got a stale datagram
				continue
			}
			unreliableSequence = sequence + 1
			// make sure the data moved out is a different slice
			o := make([]byte, reader.Len())
			reader.Read(o)
			select {
			case out <- o:
			default:
				conlog.DPrintf("receive queue full, datagram %d dropped", sequence)
			}
		}
	}
}

func writeUDP(c net.Conn, in <-chan []byte, id uuid.UUID) {
	defer c.Close()
	if _, err := c.Write(hello(id)); err != nil {
		conlog.Printf("Write failed: %v", err)
		return
	}
	unreliableSequence := uint32(0)
	var sendBuf bytes.Buffer
	for data := range in {
		// 8 byte 'header' + data
		length := len(data) + 8
		sendBuf.Reset()
		binary.Write(&sendBuf, binary.BigEndian, uint32(length|NETFLAG_UNRELIABLE))
		binary.Write(&sendBuf, binary.BigEndian, unreliableSequence)
		unreliableSequence++
		sendBuf.Write(data)
		// keep all in one write operation
		if _, err := c.Write(sendBuf.Bytes()); err != nil {
			conlog.Printf("Write failed: %v", err)
			return
		}
	}
}

// Receive returns the next datagram, or nil if none is waiting.
func (c *Conn) Receive() ([]byte, error) {
	select {
	case m, isOpen := <-c.in:
		if !isOpen {
			c.Close()
			return nil, ErrClosed
		}
		return m, nil
	default:
		return nil, nil
	}
}

// SendUnreliable queues data for sending. When the queue is full the
// datagram is dropped and ErrBufferFull returned.
func (c *Conn) SendUnreliable(data []byte) error {
	if len(data) > MAX_DATAGRAM {
		return errors.Wrapf(ErrTooLarge, "%d bytes", len(data))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	m := make([]byte, len(data))
	copy(m, data)
	select {
	case c.out <- m:
		return nil
	default:
		return ErrBufferFull
	}
}

func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.out)
	return nil
}
