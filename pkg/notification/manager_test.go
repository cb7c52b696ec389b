package notification

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationManagerSend(t *testing.T) {
	t.Run("DeliversThroughRegisteredNotifier", func(t *testing.T) {
		mock := &MockNotifier{}
		nm, err := NewNotificationManagerWithOptions(
			"https://auth.benloe.com",
			WithNotifier(EmailSystem, mock),
			WithDefaultTemplates(),
		)
		require.NoError(t, err)

		err = nm.Send(MagicLinkLogin, EmailSystem, NotificationData{
			To:   "a@x.com",
			Data: map[string]string{"MagicLink": "https://auth.benloe.com/api/auth/verify?token=abc"},
		})
		require.NoError(t, err)

		sent := mock.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, "a@x.com", sent[0].To)
	})

	t.Run("UnknownNoticeTypeFails", func(t *testing.T) {
		nm, err := NewNotificationManagerWithOptions("https://auth.benloe.com")
		require.NoError(t, err)

		err = nm.Send("unknown_notice", EmailSystem, NotificationData{To: "a@x.com"})
		assert.Error(t, err)
	})

	t.Run("MissingNotifierFails", func(t *testing.T) {
		nm, err := NewNotificationManagerWithOptions(
			"https://auth.benloe.com",
			WithDefaultTemplates(),
		)
		require.NoError(t, err)

		err = nm.Send(MagicLinkLogin, EmailSystem, NotificationData{To: "a@x.com"})
		assert.Error(t, err)
	})

	t.Run("NotifierErrorPropagates", func(t *testing.T) {
		mock := &MockNotifier{FailWith: errors.New("smtp down")}
		nm, err := NewNotificationManagerWithOptions(
			"https://auth.benloe.com",
			WithNotifier(EmailSystem, mock),
			WithDefaultTemplates(),
		)
		require.NoError(t, err)

		err = nm.Send(MagicLinkLogin, EmailSystem, NotificationData{To: "a@x.com"})
		assert.Error(t, err)
	})
}

func TestDefaultTemplatesLoaded(t *testing.T) {
	nm, err := NewNotificationManagerWithOptions("https://auth.benloe.com", WithDefaultTemplates())
	require.NoError(t, err)

	template, ok := nm.registry[MagicLinkLogin][EmailSystem]
	require.True(t, ok)
	assert.NotEmpty(t, template.Subject)
	assert.Contains(t, template.Html, "{{.MagicLink}}")
	assert.Contains(t, template.Text, "{{.MagicLink}}")
}
