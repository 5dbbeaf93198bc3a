package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

type packetReader interface {
	gopacket.PacketDataSource
	LinkType() layers.LinkType
}

// extractPCAP renders every packet of a classic pcap or pcapng capture, one per line.
func extractPCAP(content []byte) (string, error) {
	r, err := openCapture(content)
	if err != nil {
		return "", err
	}
	src := gopacket.NewPacketSource(r, r.LinkType())
	var rendered []string
	for {
		packet, err := src.NextPacket()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read packet %d: %w", len(rendered)+1, err)
		}
		rendered = append(rendered, packet.String())
	}
	return strings.Join(rendered, "\n"), nil
}

func openCapture(content []byte) (packetReader, error) {
	r, err := pcapgo.NewReader(bytes.NewReader(content))
	if err == nil {
		return r, nil
	}
	ng, ngErr := pcapgo.NewNgReader(bytes.NewReader(content), pcapgo.DefaultNgReaderOptions)
	if ngErr != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	return ng, nil
}
