package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	vapi "github.com/gefilte/vapi-go"
	"github.com/gefilte/vapi-go/events"
)

func must(err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var (
		debug       = false
		host        = vapi.DefaultHost
		assistantID = ""
		greeting    = ""
	)

	flag.StringVar(&assistantID, "assistant", assistantID, "assistant id to call.")
	flag.StringVar(&host, "host", host, "api host.")
	flag.StringVar(&greeting, "say", greeting, "message to send once the assistant is listening.")
	flag.BoolVar(&debug, "debug", false, "enable debug logs")
	flag.Parse()

	slog.SetLogLoggerLevel(slog.LevelError)
	if debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	client := vapi.New(
		vapi.WithDefaultLogger(),
		vapi.WithHost(host),
	)

	client.RegisterTool("get_time", func(ctx context.Context, args map[string]string) error {
		println("tool> get_time", time.Now().Format(time.RFC3339))
		return nil
	})
	client.RegisterTool("conversation_end", func(ctx context.Context, args map[string]string) error {
		cancel()
		return nil
	})

	evts, unsubscribe := client.Subscribe()
	defer unsubscribe()

	resp, err := client.Start(ctx, vapi.CallRequest{AssistantID: assistantID})
	must(err)
	fmt.Println("joined", resp.WebCallURL)

	for {
		select {
		case <-ctx.Done():
			stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := client.Stop(stopCtx); err != nil {
				slog.Error("stop failed", slog.Any("err", err))
			}
			stopCancel()
			return
		case e := <-evts:
			switch x := e.(type) {
			case *events.CallStartedEvent:
				println("-- listening --")
				if greeting != "" {
					must(client.Send(ctx, events.NewAddMessage(events.RoleUser, greeting)))
				}
			case *events.CallEndedEvent:
				println("-- ended --")
				return
			case *events.TranscriptEvent:
				if x.TranscriptType == events.TranscriptFinal {
					fmt.Printf("%s> %s\n", x.Role, x.Transcript)
				}
			case *events.StatusUpdateEvent:
				if x.EndedReason != nil {
					fmt.Println("status>", x.Status, *x.EndedReason)
				}
			case *events.FunctionCallEvent:
				fmt.Println("function>", x.Name, x.Parameters)
			case *events.ModelOutputEvent, *events.VoiceInputEvent, *events.SpeechUpdateEvent,
				*events.ConversationUpdateEvent, *events.MetadataEvent, *events.UserInterruptedEvent:
			case *events.HangEvent:
				println("-- hang --")
			case *events.ErrorEvent:
				slog.Error("error", slog.Any("err", x.Err))
			}
		}
	}
}
