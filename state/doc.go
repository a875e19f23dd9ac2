// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package state manages the ledger storage.
// It follows the flow as bellow:
//
//	        o
//	        |
//	[ revertable state ]
//	        |
//	 [ stacked map ] -> [ journal ] -> [ staging ] -> [ kv bulk write ]
//	        |
//	  [ lru cache ]
//	        |
//	   [ kv store ]
//
// Every write and every emitted event lands on the stacked map, so a call that
// fails can be reverted to its checkpoint without leaving anything behind.
package state
