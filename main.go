package main

import (
	"github.com/ProjectsTask/EasySwapItemView/cmd"
)

// main 是程序的入口函数
// 执行 go run main.go daemon 时，由 cobra 解析参数并进入 cmd/daemon.go 中的 DaemonCmd
func main() {
	cmd.Execute()
}
