package logger

import "github.com/ideamans/go-l10n"

func init() {
	l10n.Register("ja", l10n.LexiconMap{
		// Session lifecycle (info)
		"Recording started with %d camera(s)":   "%d 台のカメラで録画を開始しました",
		"Preview started with %d camera(s)":     "%d 台のカメラでプレビューを開始しました",
		"Recording stopped, %d file(s) written": "録画を停止しました。%d 個のファイルを書き出しました",
		"Session stopped":                       "セッションを終了しました",
		"No camera opened!":                     "カメラを開けませんでした",
		"Interrupted, shutting down...":         "中断されました。シャットダウン中...",
		"Saved %s (%d frames)":                  "%s を保存しました (%d フレーム)",
		"Writing %s":                            "%s を書き出し中",

		// Devices
		"Device enumeration failed: %v":                 "デバイスの列挙に失敗しました: %v",
		"No cameras found":                              "カメラが見つかりません",
		"Found camera %d: %s":                           "カメラ %d を検出: %s",
		"Opened %s (%dx%d @ %.4g fps)":                  "%s を開きました (%dx%d @ %.4g fps)",
		"Failed to open %s: %v":                         "%s を開けませんでした: %v",
		"Failed to release %s: %v":                      "%s の解放に失敗しました: %v",
		"Ignoring %s: at most %d cameras are supported": "%s を無視します: カメラは最大 %d 台までです",
		"Skipping duplicate selection %s":               "重複した指定 %s をスキップします",
		"%s backend not available, falling back to %s":  "%s バックエンドは利用できません。%s を使用します",

		// Capture loop (debug)
		"Dropped frame from %s: %v":       "%s のフレームを破棄しました: %v",
		"No frame from %s: %v":            "%s からフレームを取得できません: %v",
		"Waiting for first frame from %s": "%s の最初のフレームを待機中",
		"Failed to update preview: %v":    "プレビューの更新に失敗しました: %v",
		"Failed to clear preview: %v":     "プレビューの消去に失敗しました: %v",

		// Encoders
		"Starting encoder for %s (%dx%d)":                     "%s のエンコーダーを起動中 (%dx%d)",
		"Starting multiplexed encoder for %s with %d streams": "%s の多重化エンコーダーを %d ストリームで起動中",
		"Wrote %d frames to %s":                               "%d フレームを %s に書き出しました",
		"Failed to create %s: %v":                             "%s を作成できませんでした: %v",
		"Failed to create %s for %s: %v":                      "%s を %s 用に作成できませんでした: %v",
		"Failed to finalize %s: %v":                           "%s の書き出しを完了できませんでした: %v",
		"Stream %d of %s stopped: %v":                         "%[2]s のストリーム %[1]d が停止しました: %[3]v",
		"Stream %d of %s: %d frames written, %d dropped":      "%[2]s のストリーム %[1]d: %[3]d フレーム書き出し, %[4]d 破棄",
		"Timed out flushing %s":                               "%s のフラッシュがタイムアウトしました",

		// Summary
		"Failed to write summary: %v": "サマリーの書き出しに失敗しました: %v",

		// Control panel
		"Control panel listening on http://%s": "コントロールパネルを http://%s で待ち受け中",
		"HTTP error: %d - %s":                  "HTTPエラー: %d - %s",
		"Websocket upgrade failed: %v":         "WebSocketへの切り替えに失敗しました: %v",

		// Configuration
		"Reloaded %s":                       "%s を再読み込みしました",
		"Ignoring configuration change: %v": "設定の変更を無視します: %v",
		"Cannot watch %s: %v":               "%s を監視できません: %v",
	})
}
