package scopecap

import (
	"bufio"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kestrel-lab/scopecap/tmc"
)

func TestTCPLinkFraming(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	go func() {
		defer server.Close()
		br := bufio.NewReader(server)
		if _, err := br.ReadString('\n'); err != nil {
			return
		}
		server.Write([]byte("RIGOL TECHNOLOGIES,DS4024,X,00.02.03\n"))
		if _, err := br.ReadString('\n'); err != nil {
			return
		}
		server.Write(tmc.Encode([]byte{1, 2, 3, 4, 5}))
		br.ReadString('\n') // never answered: exercises the timeout
	}()

	link := &TCPLink{conn: client, r: bufio.NewReaderSize(client, 1024)}

	require.NoError(t, link.Write("*IDN?"))
	reply, err := link.Read(time.Second)
	require.NoError(t, err)
	assert.Equal(t, "RIGOL TECHNOLOGIES,DS4024,X,00.02.03", string(reply))

	require.NoError(t, link.Write(":WAV:DATA?"))
	reply, err = link.Read(time.Second)
	require.NoError(t, err)
	block, err := tmc.Decode(reply)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, block.Payload)
	assert.Equal(t, 5, block.DeclaredLength)

	require.NoError(t, link.Write(":WAV:PRE?"))
	_, err = link.Read(50 * time.Millisecond)
	assert.True(t, errors.Is(err, ErrLinkTimeout), "got %v", err)
}
