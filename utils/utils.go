package utils

import (
	"bufio"
	"os"
	"strings"

	"github.com/twmb/murmur3"
)

func HashString(s string) uint64 {
	hash := murmur3.New64()
	_, err := hash.Write([]byte(s))
	if err != nil {
		panic(err)
	}
	return hash.Sum64()
}

// HashStrings hashes a sequence as a whole. Elements are separated by a zero
// byte so that ["ab", "c"] and ["a", "bc"] hash differently.
func HashStrings(ss []string) uint64 {
	hash := murmur3.New64()
	for i, s := range ss {
		if i > 0 {
			_, _ = hash.Write([]byte{0})
		}
		_, err := hash.Write([]byte(s))
		if err != nil {
			panic(err)
		}
	}
	return hash.Sum64()
}

// ReadMap reads "key|value" lines. Blank lines and lines starting with '#' are skipped.
func ReadMap(filePath string) (map[string]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	result := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if skipLine(line) {
			continue
		}
		p := strings.SplitN(line, "|", 2)
		if len(p) != 2 {
			continue
		}
		result[strings.TrimSpace(p[0])] = strings.TrimSpace(p[1])
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func ReadSet(filePath string) (map[string]bool, error) {
	list, err := ReadList(filePath)
	if err != nil {
		return nil, err
	}

	result := make(map[string]bool, len(list))
	for _, item := range list {
		result[item] = true
	}
	return result, nil
}

func ReadList(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)

	var result []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if skipLine(line) {
			continue
		}
		result = append(result, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func skipLine(line string) bool {
	return len(line) == 0 || strings.HasPrefix(line, "#")
}
