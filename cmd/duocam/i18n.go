// Package main provides localization for the duocam CLI.
package main

import (
	"github.com/ideamans/go-l10n"
)

func init() {
	// Register Japanese translations for CLI messages.
	l10n.Register("ja", l10n.LexiconMap{
		// Root command
		"Preview and record two webcams at once.": "2台のWebカメラを同時にプレビュー・録画します。",

		// Commands
		"List the cameras that can be recorded.":              "録画できるカメラを一覧表示",
		"Record up to two cameras.":                           "最大2台のカメラを録画",
		"Serve the live preview and control panel over HTTP.": "ライブプレビューとコントロールパネルをHTTPで提供",
		"Show the tracks of a recorded MP4 file.":             "録画したMP4ファイルのトラックを表示",
		"Show version information.":                           "バージョン情報を表示",

		// Command output
		"duocam version %s":                        "duocam バージョン %s",
		"Duration: %s":                             "長さ: %s",
		"Fragmented: yes":                          "フラグメント化: あり",
		"Track %d: %s %s":                          "トラック %d: %s %s",
		"  %dx%d @ %.4g fps, %d samples, codec %s": "  %dx%d @ %.4g fps, %d サンプル, コーデック %s",

		// Summary
		"Recording Summary":     "録画サマリー",
		"Session":               "セッション",
		"Mode":                  "モード",
		"Started":               "開始時刻",
		"Duration":              "長さ",
		"Settings":              "設定",
		"Item":                  "項目",
		"Value":                 "値",
		"Backend":               "バックエンド",
		"Format":                "フォーマット",
		"Capture":               "キャプチャ",
		"Codec":                 "コーデック",
		"Bitrate":               "ビットレート",
		"Quality":               "品質",
		"Files":                 "ファイル一覧",
		"File":                  "ファイル",
		"Cameras":               "カメラ",
		"Frames":                "フレーム数",
		"Size":                  "サイズ",
		"Status":                "状態",
		"OK":                    "正常",
		"default":               "既定",
		"No files were written": "ファイルは書き出されませんでした",
		"Generated by":          "生成:",
	})
}
