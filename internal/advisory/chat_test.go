package advisory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symptom-triage-server/internal/domain"
)

func TestChatSession_Greeting(t *testing.T) {
	chat := NewChatSession(nil, &domain.IdentityRecord{Name: "Ravi Shankar"}, 0)

	transcript := chat.Transcript()
	require.Len(t, transcript, 1)
	assert.Equal(t, domain.RoleAssistant, transcript[0].Role)
	assert.Equal(t, Greeting(&domain.IdentityRecord{Name: "Ravi"}), transcript[0].Content)
	assert.NotEmpty(t, transcript[0].ID)
}

func TestChatSession_Send(t *testing.T) {
	chat := NewChatSession(NewMatcher(), nil, 0)

	reply, err := chat.Send(context.Background(), "  I have a high fever since yesterday ")
	require.NoError(t, err)

	assert.Equal(t, domain.RoleAssistant, reply.Role)
	assert.Equal(t, Advise("fever"), reply.Content)

	transcript := chat.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, domain.RoleUser, transcript[1].Role)
	assert.Equal(t, "I have a high fever since yesterday", transcript[1].Content)
	assert.Equal(t, reply, transcript[2])
}

func TestChatSession_BlankInput(t *testing.T) {
	chat := NewChatSession(nil, nil, 0)

	_, err := chat.Send(context.Background(), "   ")

	assert.ErrorIs(t, err, domain.ErrIncompleteInput)
	assert.Equal(t, 1, chat.Len())
}

func TestChatSession_CancelDuringReply(t *testing.T) {
	chat := NewChatSession(nil, nil, time.Hour)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := chat.Send(ctx, "cough")

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	transcript := chat.Transcript()
	require.Len(t, transcript, 2)
	assert.Equal(t, domain.RoleUser, transcript[1].Role)
	assert.Equal(t, "cough", transcript[1].Content)
}

func TestChatSession_CancelWhileQueued(t *testing.T) {
	chat := NewChatSession(nil, nil, 200*time.Millisecond)

	done := make(chan error, 1)
	go func() {
		_, err := chat.Send(context.Background(), "headache")
		done <- err
	}()
	require.Eventually(t, func() bool { return chat.Len() == 2 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := chat.Send(ctx, "cough")
	assert.ErrorIs(t, err, context.Canceled)

	require.NoError(t, <-done)
	transcript := chat.Transcript()
	require.Len(t, transcript, 3)
	assert.Equal(t, "headache", transcript[1].Content)
	assert.Equal(t, Advise("headache"), transcript[2].Content)
}

func TestChatSession_RoundTripsDoNotInterleave(t *testing.T) {
	chat := NewChatSession(nil, nil, time.Millisecond)
	inputs := []string{"fever", "cough", "headache", "medicine", "urgent", "doctor", "diet", "hello"}

	var wg sync.WaitGroup
	for _, in := range inputs {
		wg.Add(1)
		go func(text string) {
			defer wg.Done()
			_, err := chat.Send(context.Background(), text)
			assert.NoError(t, err)
		}(in)
	}
	wg.Wait()

	transcript := chat.Transcript()
	require.Len(t, transcript, 1+2*len(inputs))
	for i := 1; i < len(transcript); i += 2 {
		user, reply := transcript[i], transcript[i+1]
		assert.Equal(t, domain.RoleUser, user.Role)
		assert.Equal(t, domain.RoleAssistant, reply.Role)
		assert.Equal(t, Advise(user.Content), reply.Content)
	}
}

func TestChatSession_SessionsAreIsolated(t *testing.T) {
	a := NewChatSession(nil, &domain.IdentityRecord{Name: "Asha"}, 0)
	b := NewChatSession(nil, &domain.IdentityRecord{Name: "Bilal"}, 0)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			_, _ = a.Send(context.Background(), fmt.Sprintf("fever %d", n))
		}(i)
		go func(n int) {
			defer wg.Done()
			_, _ = b.Send(context.Background(), fmt.Sprintf("cough %d", n))
		}(i)
	}
	wg.Wait()

	for _, m := range a.Transcript()[1:] {
		if m.Role == domain.RoleUser {
			assert.Contains(t, m.Content, "fever")
		}
	}
	for _, m := range b.Transcript()[1:] {
		if m.Role == domain.RoleUser {
			assert.Contains(t, m.Content, "cough")
		}
	}
	assert.Equal(t, 11, a.Len())
	assert.Equal(t, 11, b.Len())
}

func TestChatSession_TranscriptIsCopy(t *testing.T) {
	chat := NewChatSession(nil, nil, 0)

	transcript := chat.Transcript()
	transcript[0].Content = "tampered"

	assert.NotEqual(t, "tampered", chat.Transcript()[0].Content)
}
