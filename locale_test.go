package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLocaleFor(t *testing.T) {
	assert.Equal(t, localeCN.NewTopic, LocaleFor("cn").NewTopic)
	assert.Equal(t, localeCN.NewTopic, LocaleFor("zh-CN").NewTopic)
	assert.Equal(t, localeEN.NewTopic, LocaleFor("en").NewTopic)
	assert.Equal(t, localeEN.NewTopic, LocaleFor("").NewTopic)
}

func TestLocaleFormatters(t *testing.T) {
	assert.Equal(t, "3 messages in this conversation", localeEN.SubTitle(3))
	assert.Equal(t, "当前共 3 条对话", localeCN.SubTitle(3))
	assert.Equal(t, "Type a message, Alt + Enter to send", localeEN.Input(SubmitKeyAltEnter))
	assert.Equal(t, "⚠️ Something went wrong: boom", localeEN.ModelError(errors.New("boom")))
	assert.Equal(t, "Exported to /tmp/x.md", localeEN.Exported("/tmp/x.md"))
}
