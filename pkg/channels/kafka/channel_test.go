package kafka

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerList(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092 ,")

	brokers, err := brokerList()
	require.NoError(t, err)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, brokers)
}

func TestBrokerList_Unset(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "")

	_, err := brokerList()
	assert.ErrorIs(t, err, ErrNoBrokers)
}
