// Package app 定義長期運行元件的最小生命週期抽象。
package app

import "context"

// Component 是可啟動、可關閉的長期元件。
//
// Run 阻塞到元件停止；Shutdown 要求停止並尊重 ctx 的期限。
// 本專案裡的實例：netsvr.ChiAdapter（HTTP）、crystalab.Runtime（所有 Table）、sched.Loop。
type Component interface {
	Run() error
	Shutdown(ctx context.Context) error
}
