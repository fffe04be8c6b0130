package model_test

import (
	"testing"

	"github.com/aretw0/parlance/pkg/config"
	"github.com/aretw0/parlance/pkg/domain"
	"github.com/aretw0/parlance/pkg/model"
	"github.com/stretchr/testify/assert"
)

func TestRenderSideChannel(t *testing.T) {
	assert.Empty(t, model.RenderSideChannel("search", nil))

	got := model.RenderSideChannel("search", []domain.SideChannelEntry{
		{Content: "first result"},
		{Content: "second result"},
	})
	assert.Equal(t, "SEARCH HISTORY:\nSearch #1: first result\n\nSearch #2: second result", got)
}

func TestRenderSideChannel_DefaultLabel(t *testing.T) {
	got := model.RenderSideChannel("", []domain.SideChannelEntry{{Content: "x"}})
	assert.Equal(t, "SIDE CHANNEL HISTORY:\nSide channel #1: x", got)
}

func TestSystemPrompt(t *testing.T) {
	in := model.Input{
		StateID: "research",
		Spec:    config.StateSpec{Prompt: "Find sources."},
		Persona: config.Persona{
			Role:              "You are a researcher.",
			StateMachineLogic: "Reply in JSON.",
		},
		SideChannelLabel: "search",
		SideChannel:      []domain.SideChannelEntry{{Content: "doc"}},
	}

	want := "You are a researcher.\n\n" +
		"Reply in JSON.\n\n" +
		"CURRENT STATE: research\n\n" +
		"SEARCH HISTORY:\nSearch #1: doc\n\n" +
		"Find sources."
	assert.Equal(t, want, model.SystemPrompt(in))
}

func TestSystemPrompt_SkipsEmptySections(t *testing.T) {
	in := model.Input{StateID: "start", Spec: config.StateSpec{Prompt: "Say hi."}}
	assert.Equal(t, "CURRENT STATE: start\n\nSay hi.", model.SystemPrompt(in))
}

func TestMessages(t *testing.T) {
	msgs := model.Messages("sys", []domain.Turn{
		{Role: domain.RoleUser, Content: "hello"},
		{Role: domain.RoleAssistant, Content: "hi"},
		{Role: domain.RoleSystem, Content: "Action result: 4"},
	})
	assert.Equal(t, []model.Message{
		{Role: domain.RoleSystem, Content: "sys"},
		{Role: domain.RoleUser, Content: "hello"},
		{Role: domain.RoleAssistant, Content: "hi"},
		{Role: domain.RoleSystem, Content: "Action result: 4"},
	}, msgs)
}
