package cpu

import "time"

// defaultNowMicros is the production wall-clock source used to pace
// PeripheralTicker.Cycle calls. NewCPU stores it in CPU.nowMicros, the
// clock tickPeripherals reads.
func defaultNowMicros() int64 {
	return time.Now().UnixMicro()
}
