package config

import (
	"fmt"

	"github.com/zalando/go-keyring"
)

// ServiceName is the keyring service the secrets are stored under.
const ServiceName = "semkernel"

type KeyType string

const (
	KeyAzureOpenAI KeyType = "azure_openai_api_key"
	KeyOpenAI      KeyType = "openai_api_key"
	KeyAnthropic   KeyType = "anthropic_api_key"
)

// Keys lists every secret the keyring may hold.
var Keys = []KeyType{KeyAzureOpenAI, KeyOpenAI, KeyAnthropic}

// ParseKey maps a name like "openai_api_key" or "openai" to a KeyType.
func ParseKey(s string) (KeyType, error) {
	for _, k := range Keys {
		if s == string(k) || s+"_api_key" == string(k) {
			return k, nil
		}
	}
	if s == "azure" {
		return KeyAzureOpenAI, nil
	}
	return "", fmt.Errorf("unknown credential %q (valid: azure_openai_api_key, openai_api_key, anthropic_api_key)", s)
}

func SetSecret(key KeyType, value string) error {
	return keyring.Set(ServiceName, string(key), value)
}

func GetSecret(key KeyType) (string, error) {
	return keyring.Get(ServiceName, string(key))
}

func DeleteSecret(key KeyType) error {
	return keyring.Delete(ServiceName, string(key))
}

// GetOrEnv returns envValue, or the keyring secret when envValue is empty.
func GetOrEnv(key KeyType, envValue string) string {
	if envValue != "" {
		return envValue
	}
	val, err := GetSecret(key)
	if err != nil {
		return ""
	}
	return val
}

// ListConfigured reports which secrets the keyring holds.
func ListConfigured() map[KeyType]bool {
	result := make(map[KeyType]bool, len(Keys))
	for _, k := range Keys {
		_, err := GetSecret(k)
		result[k] = err == nil
	}
	return result
}
