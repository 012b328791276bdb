// Package stocks maintains a local file of China A-share stocks with their
// latest market data, and values them on their expected dividends.
//
// The core functionalities include:
//   - Stocks file: reading and writing the JSON document of stock records,
//     keeping every property the refresh does not own exactly as written.
//   - Refresh: fetching the spot quote and the last audited net profit of each
//     stock from market data providers, and overwriting only what changed.
//   - Valuation: the acceptable price of a stock for a target dividend rate,
//     from its net profit, payout ratio and growth rate.
//
// Amounts are stored in the units of the file: prices in yuan, market caps and
// profits in 亿元 (100,000,000 yuan), shares in 亿股.
//
// This package serves as the foundational logic for the `stockctl`
// command-line tool.
package stocks
