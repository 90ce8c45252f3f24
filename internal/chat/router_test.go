package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBroadcastExcludesSender(t *testing.T) {
	router, registry := newTestRouter(t)
	_, aliceConn := addSession(t, registry, "alice")
	_, bobConn := addSession(t, registry, "bob")

	router.Broadcast("hi", "alice", exclude("alice"))

	require.Equal(t, []string{"[10:30:00] alice: hi"}, bobConn.lines())
	require.Empty(t, aliceConn.lines())
}

func TestBroadcastAnnouncementFormat(t *testing.T) {
	router, registry := newTestRouter(t)
	_, bobConn := addSession(t, registry, "bob")

	router.Broadcast("alice has joined the chat!", "", nil)

	require.Equal(t, []string{"[10:30:00] *** alice has joined the chat! ***"}, bobConn.lines())
}

func TestBroadcastEvictsFailedRecipientOnly(t *testing.T) {
	router, registry := newTestRouter(t)
	_, aliceConn := addSession(t, registry, "alice")
	brokenSess, brokenConn := addSession(t, registry, "broken")
	_, carolConn := addSession(t, registry, "carol")
	brokenConn.setFailSend(true)

	router.Broadcast("hello everyone", "zoe", nil)

	// Other recipients still got the message.
	require.Len(t, aliceConn.lines(), 1)
	require.Len(t, carolConn.lines(), 1)

	// The broken session is gone and closed.
	_, ok := registry.Lookup("broken")
	require.False(t, ok)
	require.True(t, brokenConn.isClosed())
	require.Error(t, brokenSess.Send("late"))
}

func TestWhisperBothSides(t *testing.T) {
	router, registry := newTestRouter(t)
	_, aliceConn := addSession(t, registry, "alice")
	_, bobConn := addSession(t, registry, "bob")

	router.Whisper("alice", "bob", "secret plan")

	require.Equal(t, []string{"[10:30:00] [WHISPER from alice]: secret plan"}, bobConn.lines())
	require.Equal(t, []string{"[10:30:00] [WHISPER to bob]: secret plan"}, aliceConn.lines())
}

func TestWhisperUnknownRecipient(t *testing.T) {
	router, registry := newTestRouter(t)
	_, aliceConn := addSession(t, registry, "alice")
	_, bobConn := addSession(t, registry, "bob")

	router.Whisper("alice", "carol", "anyone there")

	require.Equal(t, []string{"[10:30:00] *** User 'carol' not found or offline ***"}, aliceConn.lines())
	require.Empty(t, bobConn.lines())
}

func TestWhisperRecipientFailureStillConfirmsSender(t *testing.T) {
	router, registry := newTestRouter(t)
	_, aliceConn := addSession(t, registry, "alice")
	_, bobConn := addSession(t, registry, "bob")
	bobConn.setFailSend(true)

	router.Whisper("alice", "bob", "you there?")

	_, ok := registry.Lookup("bob")
	require.False(t, ok)
	require.Equal(t, []string{"[10:30:00] [WHISPER to bob]: you there?"}, aliceConn.lines())
}

func TestSystemNoticeFormatAndEviction(t *testing.T) {
	router, registry := newTestRouter(t)
	_, aliceConn := addSession(t, registry, "alice")

	router.SystemNotice("alice", "Goodbye!")
	require.Equal(t, []string{"[10:30:00] [SYSTEM]: Goodbye!"}, aliceConn.lines())

	aliceConn.setFailSend(true)
	router.SystemNotice("alice", "again")
	_, ok := registry.Lookup("alice")
	require.False(t, ok)

	// Notices to absent users are dropped silently.
	router.SystemNotice("ghost", "hello")
}

func TestRosterText(t *testing.T) {
	router, registry := newTestRouter(t)
	require.Equal(t, "No users online.", router.RosterText())

	_, _ = addSession(t, registry, "carol")
	_, _ = addSession(t, registry, "alice")
	_, _ = addSession(t, registry, "bob")
	require.Equal(t, "Online users (3): alice, bob, carol", router.RosterText())
}
