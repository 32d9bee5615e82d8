package main

import (
	"fmt"
	"strings"
)

// Locale holds the user-facing strings of the chat view
type Locale struct {
	NewTopic     string
	User         string
	Assistant    string
	SubTitle     func(count int) string
	Input        func(submitKey SubmitKey) string
	Send         string
	Typing       string
	Loading      string
	ChatList     string
	Stop         string
	Retry        string
	Delete       string
	Copy         string
	Copied       string
	CopyFailed   string
	Command      string
	NoModel      string
	ModelError   func(err error) string
	Sessions     string
	NewSession   string
	EmptySidebar string
	Exported     func(path string) string
}

var localeEN = Locale{
	NewTopic:  "New Conversation",
	User:      "You",
	Assistant: "Assistant",
	SubTitle: func(count int) string {
		return fmt.Sprintf("%d messages in this conversation", count)
	},
	Input: func(submitKey SubmitKey) string {
		return fmt.Sprintf("Type a message, %s to send", submitKey.Label())
	},
	Send:       "Send",
	Typing:     "Typing…",
	Loading:    "Loading…",
	ChatList:   "Chats",
	Stop:       "Stop",
	Retry:      "Retry",
	Delete:     "Delete",
	Copy:       "Copy",
	Copied:     "Copied to clipboard",
	CopyFailed: "Copy failed, please check the clipboard",
	Command:    "Command (Esc then :)",
	NoModel:    "No model is configured. Set llm.provider in conf.toml.",
	ModelError: func(err error) string {
		return fmt.Sprintf("⚠️ Something went wrong: %v", err)
	},
	Sessions:     "Conversations",
	NewSession:   "n: new conversation",
	EmptySidebar: "No conversations yet",
	Exported: func(path string) string {
		return "Exported to " + path
	},
}

var localeCN = Locale{
	NewTopic:  "新的对话",
	User:      "我",
	Assistant: "助手",
	SubTitle: func(count int) string {
		return fmt.Sprintf("当前共 %d 条对话", count)
	},
	Input: func(submitKey SubmitKey) string {
		return fmt.Sprintf("输入消息，%s 发送", submitKey.Label())
	},
	Send:       "发送",
	Typing:     "正在输入…",
	Loading:    "加载中…",
	ChatList:   "查看消息列表",
	Stop:       "停止",
	Retry:      "重试",
	Delete:     "删除",
	Copy:       "复制",
	Copied:     "已写入剪切板",
	CopyFailed: "复制失败，请检查剪切板",
	Command:    "命令 (Esc 然后 :)",
	NoModel:    "尚未配置模型，请在 conf.toml 中设置 llm.provider",
	ModelError: func(err error) string {
		return fmt.Sprintf("⚠️ 出错了：%v", err)
	},
	Sessions:     "对话列表",
	NewSession:   "n: 新的对话",
	EmptySidebar: "暂无对话",
	Exported: func(path string) string {
		return "已导出到 " + path
	},
}

// LocaleFor returns the strings for a language code, English by default
func LocaleFor(lang string) Locale {
	switch strings.ToLower(lang) {
	case "cn", "zh", "zh-cn", "zh_cn":
		return localeCN
	default:
		return localeEN
	}
}
