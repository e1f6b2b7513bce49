package constants

const VERSION = "1.0.0"

const CLIUserAgent = "easedrop-cli"

// Smart code format: PREFIX-XXXX, where X is drawn from CodeAlphabet.
// The alphabet drops 0/1/O/I so codes survive being read out loud.
const CodePrefix = "EASE"
const CodeAlphabet = "23456789ABCDEFGHJKLMNPQRSTUVWXYZ"
const CodeSuffixLength = 4
const MaxCodeAttempts = 100

// Key derivation parameters. These are mirrored by the browser client's
// WebCrypto derivation, so changing either side breaks decryption.
const KDFIterations = 100000
const KeySize int = 32
const NonceSize int = 12

const LimiterSeconds = 30
const LimiterAttempts = 6

const DefaultMaxDownloads = 1
const DefaultExpiryMinutes = 10
const MaxExpiryMinutes = 60 * 24 * 30

const DownloadFilename = "encrypted.bin"
