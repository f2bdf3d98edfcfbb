package proc

import (
	"bytes"
	"sync"
)

/**
 * LineWriter 把子进程输出切分成行后交给回调
 * @description
 * - 不完整的行暂存，直到收到换行或调用Flush
 * - 暂存内容达到MaxLineLength时按一行输出，没有换行的输出不会无限占用内存
 * - 行尾的\r一并去掉
 * - 可以被os/exec的拷贝协程并发调用
 */
type LineWriter struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	limit  int
	onLine func(line string)
}

// MaxLineLength 单行最大长度
const MaxLineLength = 64 * 1024

func NewLineWriter(onLine func(line string)) *LineWriter {
	return &LineWriter{onLine: onLine, limit: MaxLineLength}
}

func (w *LineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		data := w.buf.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			break
		}
		line := string(bytes.TrimRight(data[:i], "\r"))
		w.buf.Next(i + 1)
		w.onLine(line)
	}
	for w.buf.Len() >= w.limit {
		w.onLine(string(w.buf.Next(w.limit)))
	}
	return len(p), nil
}

// Flush 输出剩余不以换行结尾的内容
func (w *LineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.buf.Len() == 0 {
		return
	}
	line := string(bytes.TrimRight(w.buf.Bytes(), "\r"))
	w.buf.Reset()
	w.onLine(line)
}
