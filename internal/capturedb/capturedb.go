// Package capturedb records capture metadata in a ClickHouse database, so a
// lab can find old capture files by instrument, time range, or channel count
// without opening them. Only metadata goes to the database; waveform data
// stays in the capture documents.
package capturedb

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// Connection is an asynchronous recorder of capture rows. A nil or
// unconnected Connection is safe to use: every Record call on it is a no-op,
// so callers need no "is the DB enabled" branching.
type Connection struct {
	conn       clickhouse.Conn
	err        error
	capturemsg chan *CaptureMessage
	sync.WaitGroup
}

const databaseName = "scopecap" // official SQL name of the database

// IsConnected reports whether the connection reached a live server.
func (db *Connection) IsConnected() bool {
	return (db != nil) && (db.conn != nil) && (db.err == nil)
}

// PingServer checks that a ClickHouse server answers, for CLI diagnostics.
func PingServer() error {
	db := createConnection("unknown")
	if !db.IsConnected() {
		return fmt.Errorf("database is not connected: %v", db.err)
	}
	v, err := db.conn.ServerVersion()
	if err != nil {
		return err
	}
	fmt.Printf("ClickHouse server is alive. Version:\n%s\n", v)
	return db.conn.Close()
}

// Start opens the connection and launches the goroutine that drains capture
// messages until abort closes. version identifies this client to the server.
func Start(version string, abort <-chan struct{}) *Connection {
	db := createConnection(version)
	if db.IsConnected() {
		go db.handleConnection(abort)
	}
	return db
}

// Dummy returns a Connection that records nothing, for when the database is
// disabled by configuration.
func Dummy() *Connection {
	return &Connection{}
}

func createConnection(version string) *Connection {
	db := &Connection{}
	auth := clickhouse.Auth{
		Database: databaseName,
		Username: os.Getenv("SCOPECAP_DB_USER"),
		Password: os.Getenv("SCOPECAP_DB_PASSWORD"),
	}
	client := clickhouse.ClientInfo{
		Products: []struct {
			Name    string
			Version string
		}{
			{Name: "scopecap", Version: version},
		},
	}
	addr := os.Getenv("SCOPECAP_DB_ADDR")
	if addr == "" {
		addr = "localhost:9000"
	}
	opt := clickhouse.Options{
		Addr:       []string{addr},
		Auth:       auth,
		ClientInfo: client,
	}
	conn, err := clickhouse.Open(&opt)
	if err != nil {
		db.err = err
		return db
	}
	db.conn = conn

	if err = conn.Ping(context.Background()); err != nil {
		if exception, ok := err.(*clickhouse.Exception); ok {
			fmt.Printf("Exception [%d] %s \n%s\n", exception.Code, exception.Message, exception.StackTrace)
		}
		db.err = err
		return db
	}

	db.capturemsg = make(chan *CaptureMessage)
	db.Add(1)
	return db
}

func (db *Connection) handleConnection(abort <-chan struct{}) {
	defer db.Done()
	for {
		select {
		case <-abort:
			db.conn.Close()
			return
		case msg := <-db.capturemsg:
			db.handleCaptureMessage(msg)
		}
	}
}

// RecordCapture queues one capture row for insertion. It does not block on
// the server and silently does nothing when the DB is not connected.
func (db *Connection) RecordCapture(msg *CaptureMessage) {
	if !db.IsConnected() || msg == nil {
		return
	}
	go func() { db.capturemsg <- msg }()
}

func (db *Connection) handleCaptureMessage(m *CaptureMessage) {
	if !db.IsConnected() {
		return
	}
	ctx := context.Background()
	const nowait = false
	formattedTime := m.Time.Format("2006-01-02 15:04:05.000000")
	if err := db.conn.AsyncInsert(ctx, `INSERT INTO captures VALUES (?, ?, ?, ?, ?, ?, ?, ?)`, nowait,
		m.ID, formattedTime, m.Instrument, m.SourceAddr,
		m.Nchannels, m.Npoints, m.Filename, m.FileSize,
	); err != nil {
		fmt.Println("Error raised on AsyncInsert into captures ", err)
		db.err = err
	}
}
