package notify

import (
	"encoding/json"
	"time"

	"github.com/apex/log"
	"github.com/nats-io/nats.go"
)

const BatchCompletedSubject = "transfers.batch.completed"

// NatsNotifier publishes batch completion events to NATS so downstream
// consumers (indexers, mailers) can react without polling the database.
type NatsNotifier struct {
	conn *nats.Conn
}

// NewNatsNotifier connects to the given NATS URL. The connection reconnects
// forever; a broker restart must not take the callback path down with it.
func NewNatsNotifier(url string) (*NatsNotifier, error) {
	conn, err := nats.Connect(url, nats.MaxReconnects(-1), nats.ReconnectWait(2*time.Second))
	if err != nil {
		return nil, err
	}

	return &NatsNotifier{conn: conn}, nil
}

func (n *NatsNotifier) BatchCompleted(event BatchCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if err := n.conn.Publish(BatchCompletedSubject, payload); err != nil {
		log.Errorf("publishing completion of batch %d failed: %s", event.CoordinatorID, err)
		return err
	}

	return nil
}

func (n *NatsNotifier) Close() {
	n.conn.Close()
}
