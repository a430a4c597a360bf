package notify_test

import (
	"bytes"
	"os"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"
	"github.com/stretchr/testify/require"

	"github.com/funkpd/autolocal/pkg/utils/notify"
)

func TestMain(m *testing.M) {
	// Force deterministic, uncolored output for snapshots.
	os.Setenv("NO_COLOR", "1")

	exitCode := m.Run()

	snaps.Clean(m, snaps.CleanOpts{Sort: true})

	os.Exit(exitCode)
}

func TestPassfIncludesRunID(t *testing.T) {
	var buf bytes.Buffer

	notify.Passf(&buf, "deadbeef", "site %s created", "demo.local")

	require.Equal(t, "PASS: site demo.local created [deadbeef]\n", buf.String())
}

func TestFailfIncludesRunID(t *testing.T) {
	var buf bytes.Buffer

	notify.Failf(&buf, "deadbeef", "site %s failed", "demo.local")

	require.Equal(t, "FAIL: site demo.local failed [deadbeef]\n", buf.String())
}

func TestWriteMessagePrefixes(t *testing.T) {
	cases := []struct {
		name    string
		msgType notify.MessageType
	}{
		{name: "error", msgType: notify.ErrorType},
		{name: "warning", msgType: notify.WarningType},
		{name: "activity", msgType: notify.ActivityType},
		{name: "success", msgType: notify.SuccessType},
		{name: "info", msgType: notify.InfoType},
		{name: "title", msgType: notify.TitleType},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			var buf bytes.Buffer

			notify.WriteMessage(notify.Message{
				Type:    testCase.msgType,
				Content: "message body",
				Writer:  &buf,
			})

			snaps.MatchSnapshot(t, buf.String())
		})
	}
}

func TestWriteMessageDefaultsFormatArgs(t *testing.T) {
	var buf bytes.Buffer

	notify.Infof(&buf, "plain content without args")

	require.Equal(t, "INFO: plain content without args\n", buf.String())
}
