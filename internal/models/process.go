package models

import "time"

type RunStatus string

const (
	// 表示没有已知的存活子进程，意外退出也直接回到该状态
	StatusStopped RunStatus = "stopped"
	// 正在计算环境变量、清理遗留进程并拉起子进程
	StatusStarting RunStatus = "starting"
	// 表示正在运行
	StatusRunning RunStatus = "running"
	// 已发送终止信号，等待进程退出
	StatusStopping RunStatus = "stopping"
)

type ProcessDetail struct {
	Title          string    `json:"title"`          //显示用的名字
	Command        string    `json:"command"`        //进程启动命令
	Args           []string  `json:"args"`           //进程参数
	WorkDir        string    `json:"workDir"`        //工作目录
	Pid            int       `json:"pid"`            //进程PID
	PidFile        string    `json:"pidFile"`        //PID文件路径
	Status         RunStatus `json:"status"`         //状态
	StartCount     int       `json:"startCount"`     //启动次数
	StartTime      time.Time `json:"startTime"`      //启动时间
	LastExitTime   time.Time `json:"lastExitTime"`   //最后一次退出的时间
	LastExitReason string    `json:"lastExitReason"` //最后一次退出的原因
}
