package prompt

import (
	"os"
	"strings"
)

const Default = "You are a helpful assistant. Your primary function is to analyze websites. When a user provides a company name or a website, identify the most likely URL (e.g., 'OpenAI' becomes 'https://openai.com'). Then, you must call the 'get_website_technology' function with that URL."

// Load returns the system directive for chat requests. An empty path, or a
// file with no content, yields Default.
func Load(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return Default, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	content := strings.TrimSpace(string(data))
	if content == "" {
		return Default, nil
	}
	return content, nil
}
