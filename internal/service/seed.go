package service

import (
	"time"

	"github.com/vuctf/vuctf-api/internal/domain"
)

// DefaultChallenges is the catalog written on first run.
func DefaultChallenges() []domain.Challenge {
	return []domain.Challenge{
		{
			ID:          "1",
			Title:       "SQL Injection Basics",
			Description: "# SQL Injection Basics\n\nThe login form at `http://challenge.vuctf.com/sql-basics` builds its query by string concatenation:\n\n```sql\nSELECT * FROM users WHERE username = '$username' AND password = '$password'\n```\n\nBypass the authentication and submit the flag shown after login.\n\n## Hints\n- Try using SQL comments\n- Make the query always return true",
			Category:    domain.CategoryWeb,
			Points:      100,
			Flag:        "VUCtf{sql_1nj3ct10n_1s_fun}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2025-01-15T10:00:00Z"),
			UpdatedAt:   seedTime("2025-01-15T10:00:00Z"),
		},
		{
			ID:          "2",
			Title:       "Caesar's Secret",
			Description: "# Caesar's Secret\n\nWe intercepted this message:\n\n```\nYhfwi{fdhvdu_flskhu_zlwk_d_wzlvw}\n```\n\nIt looks like a Caesar cipher, but something is off about the flag format.\n\nThe flag format is `VUCtf{...}`.",
			Category:    domain.CategoryCrypto,
			Points:      50,
			Flag:        "VUCtf{caesar_cipher_with_a_twist}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2025-01-14T15:30:00Z"),
			UpdatedAt:   seedTime("2025-01-14T15:30:00Z"),
		},
		{
			ID:          "3",
			Title:       "Buffer Overflow 101",
			Description: "# Buffer Overflow 101\n\nThe binary reads into a 64 byte stack buffer with `gets`. Overflow it and redirect execution to `win()`.\n\n**Binary:** `nc challenge.vuctf.com 9001`",
			Category:    domain.CategoryPwn,
			Points:      200,
			Flag:        "VUCtf{buff3r_0v3rfl0w_m4st3r}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2025-01-13T09:00:00Z"),
			UpdatedAt:   seedTime("2025-01-13T09:00:00Z"),
		},
		{
			ID:          "4",
			Title:       "Hidden in Plain Sight",
			Description: "# Hidden in Plain Sight\n\nDownload [mystery.png](http://challenge.vuctf.com/files/mystery.png) and find the hidden flag.\n\n## Tools you might need\n- `strings`\n- `exiftool`\n- `binwalk`",
			Category:    domain.CategoryForensics,
			Points:      75,
			Flag:        "VUCtf{m3t4d4t4_t3lls_st0r13s}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2025-01-12T14:20:00Z"),
			UpdatedAt:   seedTime("2025-01-12T14:20:00Z"),
		},
		{
			ID:          "5",
			Title:       "Reverse Me",
			Description: "# Reverse Me\n\n[reverse_me](http://challenge.vuctf.com/files/reverse_me) checks a password. Reverse it to find the correct input.\n\nThe flag is the password in the format `VUCtf{password}`.",
			Category:    domain.CategoryReverse,
			Points:      150,
			Flag:        "VUCtf{r3v3rs3_3ng1n33r1ng_pr0}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2025-01-11T11:45:00Z"),
			UpdatedAt:   seedTime("2025-01-11T11:45:00Z"),
		},
		{
			ID:          "6",
			Title:       "XSS Playground",
			Description: "# XSS Playground\n\nThe comment section at `http://challenge.vuctf.com/xss-playground` does not sanitize input. Steal the admin cookie, which holds the flag.\n\n## Hint\nThe site uses a basic blacklist filter.",
			Category:    domain.CategoryWeb,
			Points:      125,
			Flag:        "VUCtf{xss_4tt4ck_succ3ssful}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2025-01-10T16:00:00Z"),
			UpdatedAt:   seedTime("2025-01-10T16:00:00Z"),
		},
		{
			ID:          "7",
			Title:       "RSA Rookie",
			Description: "# RSA Rookie\n\n```\nn = 323\ne = 5\nc = 144\n```\n\nDecrypt the message. With a modulus this small, factoring is easy.",
			Category:    domain.CategoryCrypto,
			Points:      100,
			Flag:        "VUCtf{rs4_1s_n0t_s0_h4rd}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2025-01-09T13:30:00Z"),
			UpdatedAt:   seedTime("2025-01-09T13:30:00Z"),
		},
		{
			ID:          "8",
			Title:       "Memory Dump Analysis",
			Description: "# Memory Dump Analysis\n\nFind the flag in [memory.dmp](http://challenge.vuctf.com/files/memory.dmp).\n\n## Hint\nLook at processes, command history and clipboard data.",
			Category:    domain.CategoryForensics,
			Points:      250,
			Flag:        "VUCtf{m3m0ry_f0r3ns1cs_3xp3rt}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2025-01-08T10:15:00Z"),
			UpdatedAt:   seedTime("2025-01-08T10:15:00Z"),
		},
		{
			ID:          "9",
			Title:       "JWT Token Forgery",
			Description: "# JWT Token Forgery\n\n`http://challenge.vuctf.com/jwt-app` signs its tokens with a weak secret. Forge an admin token and read `/admin`.",
			Category:    domain.CategoryWeb,
			Points:      175,
			Flag:        "VUCtf{jwt_f0rg3ry_m4st3r}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2025-01-07T09:30:00Z"),
			UpdatedAt:   seedTime("2025-01-07T09:30:00Z"),
		},
		{
			ID:          "10",
			Title:       "Format String Vulnerability",
			Description: "# Format String Vulnerability\n\nThe service passes user input straight to `printf`. Leak the flag from the stack.\n\n**Service:** `nc challenge.vuctf.com 9002`",
			Category:    domain.CategoryPwn,
			Points:      225,
			Flag:        "VUCtf{f0rm4t_str1ng_l34k}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2025-01-06T14:00:00Z"),
			UpdatedAt:   seedTime("2025-01-06T14:00:00Z"),
		},
		{
			ID:          "11",
			Title:       "Vigenere Cipher",
			Description: "# Vigenere Cipher\n\nThe ciphertext is long enough for frequency analysis. Recover the key and decrypt.",
			Category:    domain.CategoryCrypto,
			Points:      150,
			Flag:        "VUCtf{v1g3n3r3_c1ph3r_br0k3n_w1th_fr3qu3ncy}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2025-01-05T11:20:00Z"),
			UpdatedAt:   seedTime("2025-01-05T11:20:00Z"),
		},
		{
			ID:          "12",
			Title:       "Steganography 101",
			Description: "# Steganography 101\n\nA message is hidden in the least significant bits of an innocent looking image.",
			Category:    domain.CategoryForensics,
			Points:      100,
			Flag:        "VUCtf{st3g4n0gr4phy_n1nj4}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2025-01-04T16:45:00Z"),
			UpdatedAt:   seedTime("2025-01-04T16:45:00Z"),
		},
		{
			ID:          "13",
			Title:       "ARM Assembly Challenge",
			Description: "# ARM Assembly Challenge\n\nRead the ARM assembly listing and work out which input makes the check pass.",
			Category:    domain.CategoryReverse,
			Points:      200,
			Flag:        "VUCtf{4rm_r3v3rs1ng_ch4mp}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2025-01-03T10:00:00Z"),
			UpdatedAt:   seedTime("2025-01-03T10:00:00Z"),
		},
		{
			ID:          "14",
			Title:       "SSRF to RCE",
			Description: "# SSRF to RCE\n\nThe URL preview feature fetches anything you give it. Reach the internal admin service and chain it into code execution.",
			Category:    domain.CategoryWeb,
			Points:      300,
			Flag:        "VUCtf{ssrf_t0_rc3_ch41n3d}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2025-01-02T13:15:00Z"),
			UpdatedAt:   seedTime("2025-01-02T13:15:00Z"),
		},
		{
			ID:          "15",
			Title:       "Return Oriented Programming",
			Description: "# Return Oriented Programming\n\nNX is enabled. Build a ROP chain from the gadgets in the binary to spawn a shell.",
			Category:    domain.CategoryPwn,
			Points:      350,
			Flag:        "VUCtf{r0p_ch41n_m4st3r}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2025-01-01T09:00:00Z"),
			UpdatedAt:   seedTime("2025-01-01T09:00:00Z"),
		},
		{
			ID:          "16",
			Title:       "Elliptic Curve Cryptography",
			Description: "# Elliptic Curve Cryptography\n\nThe curve order is small. Solve the discrete logarithm to recover the private key.",
			Category:    domain.CategoryCrypto,
			Points:      275,
			Flag:        "VUCtf{3cc_br0k3n_sm4ll_curv3}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2024-12-31T15:30:00Z"),
			UpdatedAt:   seedTime("2024-12-31T15:30:00Z"),
		},
		{
			ID:          "17",
			Title:       "PCAP Analysis",
			Description: "# PCAP Analysis\n\nA capture of suspicious traffic. Follow the streams and extract the exfiltrated flag.",
			Category:    domain.CategoryForensics,
			Points:      125,
			Flag:        "VUCtf{p4ck3t_4n4lys1s_pr0}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2024-12-30T12:00:00Z"),
			UpdatedAt:   seedTime("2024-12-30T12:00:00Z"),
		},
		{
			ID:          "18",
			Title:       "Obfuscated JavaScript",
			Description: "# Obfuscated JavaScript\n\nDeobfuscate the script to find the flag it compares against.",
			Category:    domain.CategoryReverse,
			Points:      75,
			Flag:        "VUCtf{j4v4scr1pt_d30bfusc4t10n_1s_fun}",
			CreatedBy:   "admin",
			CreatedAt:   seedTime("2024-12-29T14:30:00Z"),
			UpdatedAt:   seedTime("2024-12-29T14:30:00Z"),
		},
	}
}

func seedTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}
