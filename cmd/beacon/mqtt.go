// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tuliogomesp/Floripasat-Project/cc112x"
)

// RxEvent is published for every packet received.
type RxEvent struct {
	Boot     string    `json:"boot"`
	At       time.Time `json:"at"`
	Length   byte      `json:"length"`
	Sequence uint16    `json:"seq"`
	Payload  []byte    `json:"payload"`
	Rssi     *int      `json:"rssi,omitempty"`
	Lqi      *byte     `json:"lqi,omitempty"`
	CrcOK    *bool     `json:"crc_ok,omitempty"`
}

// TxEvent is published for every packet sent.
type TxEvent struct {
	Boot     string    `json:"boot"`
	At       time.Time `json:"at"`
	Sequence uint16    `json:"seq"`
}

// ErrEvent is published for every recovered radio error.
type ErrEvent struct {
	Boot  string    `json:"boot"`
	At    time.Time `json:"at"`
	Error string    `json:"error"`
}

func newRxEvent(boot uuid.UUID, p *cc112x.Packet) *RxEvent {
	ev := &RxEvent{Boot: boot.String(), At: time.Now(), Length: p.Length,
		Sequence: p.Sequence, Payload: p.Payload}
	if p.Status {
		rssi, lqi, crc := p.Rssi, p.Lqi, p.CrcOK
		ev.Rssi, ev.Lqi, ev.CrcOK = &rssi, &lqi, &crc
	}
	return ev
}

// mq is a handle onto a MQTT broker connection.
type mq struct {
	conn   mqtt.Client // broker connection
	prefix string      // topic prefix
	log    *logrus.Entry
}

// newMQ connects to a broker and returns a new mq object. The connection is persistent, i.e.,
// re-establishes itself if there is a disconnect.
func newMQ(conf MqttConfig, boot uuid.UUID, log *logrus.Entry) (*mq, error) {
	hostname, _ := os.Hostname()
	id := fmt.Sprintf("floripasat-%s-%s", hostname, boot.String()[:8])
	log.Debugf("Configuring MQTT with client id %s, broker %s", id, conf.Broker)
	opts := mqtt.NewClientOptions().AddBroker("tcp://" + conf.Broker)
	opts.ClientID = id
	opts.Username = conf.User
	opts.Password = conf.Password
	opts.AutoReconnect = true
	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		log.Warnf("MQTT connection lost: %s", err)
	}

	mqConn := mqtt.NewClient(opts)
	if token := mqConn.Connect(); !token.WaitTimeout(10*time.Second) || token.Error() != nil {
		if token.Error() != nil {
			return nil, token.Error()
		}
		return nil, fmt.Errorf("timeout connecting to MQTT broker %s", conf.Broker)
	}
	log.Infof("MQTT connected to %s", conf.Broker)
	return &mq{conn: mqConn, prefix: conf.Topic, log: log}, nil
}

// Publish publishes a JSON encoded message under the topic prefix.
func (mq *mq) Publish(suffix string, payload interface{}) {
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		mq.log.Errorf("cannot encode %s message: %s", suffix, err)
		return
	}
	mq.conn.Publish(mq.prefix+"/"+suffix, 1, false, jsonPayload)
}

func (mq *mq) Close() {
	mq.conn.Disconnect(250)
}
