package mq

import (
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducer_SendMessage(t *testing.T) {
	mock := mocks.NewSyncProducer(t, NewProducerConfig())
	mock.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		if string(val) != `{"event":"allowance.set"}` {
			return errors.New("unexpected payload")
		}
		return nil
	})

	p := NewProducer(mock)
	require.NoError(t, p.SendMessage("allowance_event", "child", `{"event":"allowance.set"}`))
	require.NoError(t, p.Close())
}

func TestProducer_SendMessageFailure(t *testing.T) {
	mock := mocks.NewSyncProducer(t, NewProducerConfig())
	mock.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	p := NewProducer(mock)
	err := p.SendMessage("allowance_event", "child", "{}")
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, p.Close())
}

func TestNewProducerConfig(t *testing.T) {
	cfg := NewProducerConfig()
	assert.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	assert.True(t, cfg.Producer.Return.Successes)
	assert.Equal(t, 3, cfg.Producer.Retry.Max)
}

func TestProducer_CloseNil(t *testing.T) {
	var p *Producer
	assert.NoError(t, p.Close())
}
