package groq

import "intervai/server/internal/llm"

func init() {
	llm.RegisterProvider(providerName, func() (llm.Provider, error) {
		return NewClient(NewConfig()), nil
	})
}
