package agent

import (
	"context"
	"log"
	"sync"
)

// StartWorkers запускает power агентов с общим соединением и ждёт
// их остановки после отмены ctx
func StartWorkers(ctx context.Context, power int, serverAddr string) error {
	if power <= 0 {
		power = 1
		log.Printf("COMPUTING_POWER некорректно, используем значение по умолчанию: %d", power)
	}

	conn, err := Dial(serverAddr)
	if err != nil {
		return err
	}
	defer conn.Close()

	log.Printf("Запуск агента с %d воркерами, оркестратор: %s", power, serverAddr)
	RunAgents(ctx, power, func(id int) TaskClient {
		return NewGRPCClient(conn, int32(id))
	})
	log.Println("Все воркеры остановлены")
	return nil
}

// RunAgents запускает power агентов и блокируется до их завершения
func RunAgents(ctx context.Context, power int, newClient func(id int) TaskClient) {
	var wg sync.WaitGroup
	for i := 1; i <= power; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			NewAgent(id, newClient(id)).Run(ctx)
		}(i)
	}
	wg.Wait()
}
